package cases

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/shravanasati/tck/internal/bench"
	"github.com/shravanasati/tck/internal/config"
)

type appConfig struct {
	Database struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	} `json:"database"`
	Cache struct {
		Timeout int `json:"timeout"`
		Size    int `json:"size"`
	} `json:"cache"`
	Features []string `json:"features"`
	Version  string   `json:"version"`
}

const configReads = 100

type configLoader struct {
	cache *config.Cache
}

func configLoad(cache *config.Cache) bench.Case {
	if cache == nil {
		cache = config.NewCache(0)
	}
	l := &configLoader{cache: cache}

	cached := bench.OfE2("CACHED", l.cached)
	cached.Impl = (*configLoader).cached

	return bench.Case{
		Name:        "CONFIG_LOAD",
		Description: "reading a config file repeatedly vs memoizing it by path",
		Setup:       l.setup,
		Baseline:    bench.OfE2(bench.BaselineName, readEveryTime),
		Variants:    []bench.Candidate{cached},
		Cleanup:     l.cleanup,
	}
}

func (l *configLoader) setup() ([]any, error) {
	f, err := os.CreateTemp("", "tck-config-*.json")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg appConfig
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Cache.Timeout = 300
	cfg.Cache.Size = 1000
	cfg.Features = []string{"logging", "monitoring", "analytics"}
	cfg.Version = "1.2.3"
	if err := json.NewEncoder(f).Encode(cfg); err != nil {
		return nil, errors.Join(err, os.Remove(f.Name()))
	}
	return []any{f.Name(), configReads}, nil
}

func (l *configLoader) cleanup(args []any) {
	if len(args) == 0 {
		return
	}
	if path, ok := args[0].(string); ok {
		l.cache.Invalidate(path)
		os.Remove(path)
	}
}

func readEveryTime(path string, reads int) ([]string, error) {
	var hosts []string
	for range reads {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var cfg appConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		hosts = append(hosts, cfg.Database.Host)
	}
	return hosts, nil
}

func (l *configLoader) cached(path string, reads int) ([]string, error) {
	var hosts []string
	for range reads {
		cfg, err := config.LoadJSON[appConfig](l.cache, path)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, cfg.Database.Host)
	}
	return hosts, nil
}
