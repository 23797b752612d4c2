package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsgraph/backend/go/internal/api"
	"newsgraph/backend/go/internal/articlestore"
	"newsgraph/backend/go/internal/config"
	"newsgraph/backend/go/internal/database/kafka"
	"newsgraph/backend/go/internal/database/neo4j"
	"newsgraph/backend/go/internal/database/redis"
	"newsgraph/backend/go/internal/database/sqldb"
	"newsgraph/backend/go/internal/dedup"
	"newsgraph/backend/go/internal/events"
	"newsgraph/backend/go/internal/graphstore"
	"newsgraph/backend/go/internal/llm"
	"newsgraph/backend/go/internal/models"
	"newsgraph/backend/go/internal/pipeline"
	"newsgraph/backend/go/internal/source"
	httpserver "newsgraph/backend/go/pkg/http"
	"newsgraph/backend/go/pkg/logger"
)

// closer 记录一个需要在退出时释放的资源。
type closer struct {
	name  string
	close func() error
}

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	inputFile := flag.String("file", "", "JSON Lines 文章文件，\"-\" 表示标准输入 (覆盖配置)")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *inputFile != "" {
		cfg.Sources.File = *inputFile
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// 2. 初始化 Logger
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	appLogger := logger.New(cfg.App.Name, "", "")
	appLogger.Info("Logger initialized for news pipeline")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []closer
	defer func() { shutdown(appLogger, closers) }()
	fatal := func(msg string, err error) {
		// Fatal 会直接退出进程，先释放已经获取的资源。
		shutdown(appLogger, closers)
		appLogger.Fatal(fmt.Sprintf("%s: %v", msg, err))
	}

	settings := pipeline.SettingsFromConfig(cfg.Extraction)

	// 3. 初始化图数据库
	neoClient, err := neo4j.GetClient(ctx, &cfg.Databases.Neo4j)
	if err != nil {
		fatal("Failed to connect to neo4j", err)
	}
	closers = append(closers, closer{"neo4j", func() error { return neoClient.Close(context.Background()) }})
	graph := graphstore.NewNeo4jStore(neoClient)
	if err := graph.EnsureSchema(ctx); err != nil {
		appLogger.WithError(errorInfo(err, "graph_schema")).Warn("Failed to ensure entity constraint")
	}

	// 4. 初始化关系库
	db, err := sqldb.Open(&cfg.Databases.SQL)
	if err != nil {
		fatal("Failed to connect to relational store", err)
	}
	closers = append(closers, closer{"sql", func() error { return sqldb.Close(db) }})
	articles := articlestore.NewGormStore(db)
	if err := articles.Migrate(ctx); err != nil {
		fatal("Failed to migrate news table", err)
	}

	// 5. 初始化文本补全服务
	var completer llm.Completer
	completer, err = llm.NewCompleter(ctx, cfg.LLM)
	if err != nil {
		fatal("Failed to create completion client", err)
	}
	if cfg.Middleware.CircuitBreaker.Enabled {
		completer = llm.NewGuarded(completer, cfg.Middleware.CircuitBreaker)
	}
	closers = append(closers, closer{"llm", func() error { return llm.Close(completer) }})
	appLogger.WithField("provider", cfg.LLM.Provider).WithField("model", cfg.LLM.Model).Info("Completion client initialized")

	checks := map[string]api.HealthCheck{
		"neo4j": neoClient.HealthCheck,
		"sql":   func(ctx context.Context) error { return sqldb.HealthCheck(ctx, db) },
	}

	// 6. 去重: 优先使用 Redis，否则退回进程内 LRU
	var seen dedup.Seen
	if cfg.Databases.Redis.Address != "" {
		rdb, err := redis.NewClient(ctx, &cfg.Databases.Redis)
		if err != nil {
			fatal("Failed to connect to redis", err)
		}
		closers = append(closers, closer{"redis", rdb.Close})
		seen = dedup.NewRedisSeen(rdb, cfg.Databases.Redis.Prefix, settings.Retention)
		checks["redis"] = func(ctx context.Context) error { return redis.HealthCheck(ctx, rdb) }
	} else {
		local, err := dedup.NewLocalSeen(10000, settings.Retention)
		if err != nil {
			fatal("Failed to create link cache", err)
		}
		seen = local
	}

	// 7. Kafka: 文章输入与三元组事件输出
	var (
		sources   []source.Source
		publisher events.Publisher = events.Nop{}
	)
	if len(cfg.Databases.Kafka.Brokers) > 0 {
		kc, err := kafka.NewClient(&cfg.Databases.Kafka)
		if err != nil {
			fatal("Failed to create kafka client", err)
		}
		closers = append(closers, closer{"kafka", kc.Close})
		checks["kafka"] = kc.HealthCheck

		tp := events.NewTriplePublisher(kc.NewWriter(cfg.Databases.Kafka.TripleTopic))
		closers = append(closers, closer{"triple publisher", tp.Close})
		publisher = tp

		ks := source.NewKafkaSource(kc.NewReader(cfg.Databases.Kafka.ArticleTopic), appLogger)
		closers = append(closers, closer{"kafka source", ks.Close})
		sources = append(sources, ks)
	}

	// 8. 其余文章来源
	if len(cfg.Sources.Feeds) > 0 {
		sources = append(sources, source.NewFeedSource(cfg.Sources.Feeds, config.Duration(cfg.Sources.PollInterval, 15*time.Minute), appLogger))
	}
	if cfg.Sources.File != "" {
		r, name, err := openInput(cfg.Sources.File)
		if err != nil {
			fatal("Failed to open article file", err)
		}
		closers = append(closers, closer{"input file", r.Close})
		sources = append(sources, source.NewLinesSource(name, r))
	}

	var srv *httpserver.Server
	queue := source.NewQueue(cfg.Sources.QueueSize)
	if cfg.Server.Enabled {
		sources = append(sources, queue)
	}
	if len(sources) == 0 {
		fatal("No article sources configured", errors.New("configure feeds, kafka, a file or the HTTP server"))
	}

	// 9. 组装流水线
	proc := pipeline.NewProcessor(pipeline.Deps{
		Completer: completer,
		Graph:     graph,
		Articles:  articles,
		Publisher: publisher,
		Seen:      seen,
	}, settings)
	runner := pipeline.NewRunner(proc, articles, settings)

	// 10. 管理接口
	if cfg.Server.Enabled {
		srv = httpserver.NewServer(cfg)
		api.NewHandler(queue, graph, proc.Stats, checks).Register(srv.Engine(), srv.RateLimit())
		go func() {
			appLogger.Info("Starting HTTP server on " + cfg.Server.Address)
			if err := srv.ListenAndServe(); err != nil {
				appLogger.WithError(errorInfo(err, "http")).Error("HTTP server stopped")
				stop()
			}
		}()
		closers = append(closers, closer{"http server", func() error {
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		}})
	}

	// 11. 运行直到所有来源耗尽或收到退出信号
	appLogger.WithField("sources", len(sources)).Info("News pipeline started")
	if err := runner.Run(ctx, source.Merge(ctx, appLogger, sources...)); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.WithError(errorInfo(err, "runner")).Error("Pipeline stopped with error")
	}
	appLogger.Info("News pipeline stopping")
}

// shutdown 逆序释放资源，单个资源关闭失败只记录日志，不影响其余资源。
func shutdown(l *logger.Logger, closers []closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.close(); err != nil {
			l.WithField("resource", c.name).WithError(errorInfo(err, "shutdown")).Error("Failed to close resource cleanly")
			continue
		}
		l.WithField("resource", c.name).Debug("Resource closed")
	}
}

func openInput(path string) (io.ReadCloser, string, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	return f, path, nil
}

func errorInfo(err error, stage string) models.ErrorInfo {
	return models.ErrorInfo{Message: err.Error(), Type: stage}
}
