package cli

import (
	"context"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/adapter"
	"github.com/m-mizutani/omnix/pkg/geo"
	"github.com/m-mizutani/omnix/pkg/interfaces"
	"github.com/m-mizutani/omnix/pkg/repository"
	"github.com/m-mizutani/omnix/pkg/service/llm"
	"github.com/m-mizutani/omnix/pkg/usecase/ecoscore"
	"github.com/m-mizutani/omnix/pkg/usecase/research"
	"github.com/m-mizutani/omnix/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	cacheFirestore = "firestore"
	cacheRedis     = "redis"
	cacheMemory    = "memory"
)

// config holds configuration values
type config struct {
	// Cache
	cache         string
	project       string
	database      string
	redisAddr     string
	redisPassword string

	// LLM
	geminiProject  string
	geminiLocation string
	geminiModel    string
	tipsModel      string

	// Search
	searchAPIKey string
	searchCX     string

	// Research
	archiveBucket string
	originsFile   string
	queryDelay    time.Duration
}

// cacheFlags returns flags for the evidence cache backend with destination config
func cacheFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cache",
			Usage:       "Evidence cache backend (firestore, redis, memory)",
			Value:       cacheMemory,
			Sources:     cli.EnvVars("OMNIX_CACHE"),
			Destination: &cfg.cache,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address (host:port)",
			Value:       "localhost:6379",
			Sources:     cli.EnvVars("OMNIX_REDIS_ADDR"),
			Destination: &cfg.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Sources:     cli.EnvVars("OMNIX_REDIS_PASSWORD"),
			Destination: &cfg.redisPassword,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model for claim synthesis and score explanation",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
		&cli.StringFlag{
			Name:        "tips-model",
			Usage:       "Model for sustainability tips",
			Value:       "gemma-2-9b-it",
			Sources:     cli.EnvVars("OMNIX_TIPS_MODEL"),
			Destination: &cfg.tipsModel,
		},
	}
}

// researchFlags returns flags for evidence research with destination config
func researchFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "search-api-key",
			Usage:       "Google Custom Search API key",
			Sources:     cli.EnvVars("GOOGLE_CSE_API_KEY"),
			Destination: &cfg.searchAPIKey,
		},
		&cli.StringFlag{
			Name:        "search-cx",
			Usage:       "Google Custom Search engine ID",
			Sources:     cli.EnvVars("GOOGLE_CSE_CX"),
			Destination: &cfg.searchCX,
		},
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket to archive fresh evidence packs (optional)",
			Sources:     cli.EnvVars("OMNIX_ARCHIVE_BUCKET"),
			Destination: &cfg.archiveBucket,
		},
		&cli.DurationFlag{
			Name:        "query-delay",
			Usage:       "Pause between consecutive search queries",
			Value:       200 * time.Millisecond,
			Sources:     cli.EnvVars("OMNIX_QUERY_DELAY"),
			Destination: &cfg.queryDelay,
		},
	}
}

// originFlags returns flags for the material origin table with destination config
func originFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "origins-file",
			Usage:       "YAML file replacing the built-in material origin table",
			Sources:     cli.EnvVars("OMNIX_ORIGINS_FILE"),
			Destination: &cfg.originsFile,
		},
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var nopCloser io.Closer = closerFunc(func() error { return nil })

// newCache creates the evidence cache selected by --cache
func (cfg *config) newCache(ctx context.Context) (interfaces.EvidenceCache, io.Closer, error) {
	switch cfg.cache {
	case cacheFirestore:
		if cfg.project == "" {
			return nil, nil, goerr.New("project is required for firestore cache")
		}
		if cfg.database == "" {
			return nil, nil, goerr.New("database is required for firestore cache")
		}
		repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create firestore cache")
		}
		return repo, repo, nil

	case cacheRedis:
		if cfg.redisAddr == "" {
			return nil, nil, goerr.New("redis-addr is required for redis cache")
		}
		repo := repository.NewRedis(cfg.redisAddr, cfg.redisPassword, 0)
		if err := repo.Ping(ctx); err != nil {
			return nil, nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", cfg.redisAddr))
		}
		return repo, repo, nil

	case cacheMemory, "":
		return repository.NewMemory(), nopCloser, nil

	default:
		return nil, nil, goerr.New("unknown cache backend", goerr.V("cache", cfg.cache))
	}
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (*adapter.GeminiClient, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation,
		adapter.WithGenerativeModel(cfg.geminiModel))
}

// newSearch creates the web search adapter. Missing credentials are allowed and
// make every search return no results.
func (cfg *config) newSearch(ctx context.Context) (*adapter.Search, error) {
	if cfg.searchAPIKey == "" || cfg.searchCX == "" {
		logging.From(ctx).Warn("search-api-key or search-cx is not set, web search is disabled")
	}
	return adapter.NewSearch(ctx, cfg.searchAPIKey, cfg.searchCX)
}

// newArchive returns nil when no archive bucket is configured
func (cfg *config) newArchive(ctx context.Context) (interfaces.EvidenceArchive, error) {
	if cfg.archiveBucket == "" {
		return nil, nil
	}
	storage, err := adapter.NewStorage(ctx, cfg.archiveBucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return adapter.NewArchive(storage), nil
}

// newOriginIndex loads --origins-file, or the built-in table when unset
func (cfg *config) newOriginIndex() (*geo.Index, error) {
	if cfg.originsFile == "" {
		return geo.Default(), nil
	}
	index, err := geo.Load(cfg.originsFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load origins file", goerr.V("path", cfg.originsFile))
	}
	return index, nil
}

// newResearch wires the research usecase with all collaborators
func (cfg *config) newResearch(ctx context.Context, cache interfaces.EvidenceCache, gemini adapter.Gemini) (*research.UseCase, error) {
	search, err := cfg.newSearch(ctx)
	if err != nil {
		return nil, err
	}

	synth, err := llm.NewSynthesizer(gemini)
	if err != nil {
		return nil, err
	}

	index, err := cfg.newOriginIndex()
	if err != nil {
		return nil, err
	}

	opts := []research.Option{
		research.WithOriginIndex(index),
		research.WithQueryDelay(cfg.queryDelay),
	}

	archive, err := cfg.newArchive(ctx)
	if err != nil {
		return nil, err
	}
	if archive != nil {
		opts = append(opts, research.WithArchive(archive))
	}

	return research.New(cache, search, adapter.NewFetcher(), synth, opts...), nil
}

// newEcoScore wires the eco-score usecase. Without Gemini, fixed explanation
// and tips are used.
func (cfg *config) newEcoScore(ctx context.Context, gemini *adapter.GeminiClient) (*ecoscore.UseCase, error) {
	if gemini == nil {
		logging.From(ctx).Warn("gemini-project is not set, using fixed explanation and tips")
		return ecoscore.New(), nil
	}

	explainer, err := llm.NewExplainer(gemini)
	if err != nil {
		return nil, err
	}

	opts := []ecoscore.Option{ecoscore.WithExplainer(explainer)}
	if cfg.tipsModel != "" {
		opts = append(opts, ecoscore.WithTips(llm.NewTipsAdvisor(gemini.WithModel(cfg.tipsModel))))
	}
	return ecoscore.New(opts...), nil
}
