package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/ruleminer/internal/dataset"
	"github.com/blackwell-systems/ruleminer/internal/metrics"
	"github.com/blackwell-systems/ruleminer/internal/miner"
	"github.com/blackwell-systems/ruleminer/internal/store"
	"github.com/blackwell-systems/ruleminer/internal/store/postgres"
)

// source is an opened TabularSource plus what is needed to release it.
type source struct {
	miner.TabularSource
	name  string
	close func() error
}

func (s *source) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// openSource opens the configured table from PostgreSQL when a DSN is set,
// otherwise from the SQLite database. The result is wrapped in a row-match
// cache unless cache_size is 0.
func openSource() (*source, error) {
	if settings.Table == "" {
		return nil, fmt.Errorf("no table specified: use --table or set RULEMINER_TABLE")
	}

	var src *source
	if settings.DSN != "" {
		schema, table := splitQualified(settings.Table)
		pg, err := postgres.Open(settings.DSN, schema, table)
		if err != nil {
			return nil, err
		}
		src = &source{TabularSource: pg, name: settings.Table, close: pg.Close}
	} else {
		dbPath, err := getDBPath()
		if err != nil {
			return nil, err
		}
		if err := requireDB(dbPath); err != nil {
			return nil, err
		}

		st, err := store.New(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		view, err := st.Table(settings.Table)
		if err != nil {
			st.Close()
			return nil, err
		}
		src = &source{TabularSource: view, name: settings.Table, close: st.Close}
	}

	if settings.CacheSize > 0 {
		cached, err := dataset.NewCached(src.TabularSource, settings.CacheSize)
		if err != nil {
			src.Close()
			return nil, err
		}
		src.TabularSource = cached
	}

	logrus.WithFields(logrus.Fields{
		"table":   src.name,
		"columns": len(src.ColumnNames()),
		"rows":    src.RowCount(),
	}).Debug("opened source")

	return src, nil
}

// splitQualified splits "schema.table", defaulting the schema to public.
func splitQualified(name string) (schema, table string) {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i], name[i+1:]
	}
	return "public", name
}

// newMiner builds a miner from the resolved settings.
func newMiner(observers ...miner.Observer) (*miner.Miner, error) {
	opts := []miner.Option{miner.WithLogger(logrus.StandardLogger())}
	if settings.Workers > 0 {
		opts = append(opts, miner.WithWorkers(settings.Workers))
	}
	switch len(observers) {
	case 0:
	case 1:
		opts = append(opts, miner.WithObserver(observers[0]))
	default:
		opts = append(opts, miner.WithObserver(metrics.Fanout(observers)))
	}
	return miner.New(settings.MinerConfig(), opts...)
}

// mineRun runs the full pipeline and packages it as a storable result.
func mineRun(m *miner.Miner, src *source) (*store.RunResult, error) {
	levels, err := m.Levels(src)
	if err != nil {
		return nil, fmt.Errorf("frequent itemset search failed: %w", err)
	}

	var itemsets []miner.ScoredItemset
	var frontier []miner.Itemset
	if len(levels) > 0 {
		itemsets = levels[len(levels)-1].Survivors
		frontier = levels[len(levels)-1].Itemsets()
	}

	rules, err := m.RulesFromItemsets(src, frontier)
	if err != nil {
		return nil, fmt.Errorf("rule mining failed: %w", err)
	}

	cfg := m.Config()
	return &store.RunResult{
		Run: store.Run{
			CreatedAt:           time.Now(),
			Source:              src.name,
			SupportThreshold:    cfg.SupportThreshold,
			ConfidenceThreshold: cfg.ConfidenceThreshold,
			RelativeSupport:     cfg.RelativeSupport,
			RowCount:            src.RowCount(),
			ItemsetCount:        len(itemsets),
			RuleCount:           len(rules),
		},
		Itemsets: itemsets,
		Rules:    rules,
	}, nil
}

// openStore opens the SQLite store and ensures the run tables exist.
func openStore() (*store.Store, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}

	st, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return st, nil
}
