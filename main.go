package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"starchart/config"
	"starchart/document"
	"starchart/models"
	"starchart/providers/qqbot"
	"starchart/providers/weibo"
	"starchart/services"
	"starchart/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	chartRunsCounter      *prometheus.CounterVec
	schemaMismatchCounter prometheus.Counter
)

func init() {
	chartRunsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chart_runs_total",
			Help: "Total number of chart runs by result.",
		},
		[]string{"status"},
	)
	schemaMismatchCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chart_schema_mismatch_total",
			Help: "Total number of runs aborted because a document did not match the expected schema.",
		},
	)
	prometheus.MustRegister(chartRunsCounter, schemaMismatchCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// errRunInProgress wird gemeldet, wenn bereits ein Lauf aktiv ist.
var errRunInProgress = errors.New("a run is already in progress")

// runner verhindert parallele Läufe von Cron und API.
type runner struct {
	mu      sync.Mutex
	db      *gorm.DB
	service *services.ChartService
	log     *zap.Logger
}

// start sichert den Lauf-Slot synchron und übergibt do die Funktion, die den
// Lauf ausführt und den Slot danach freigibt. Ist der Slot belegt, wird
// errRunInProgress zurückgegeben und do nie gerufen.
func (r *runner) start(do func(exec func(context.Context) (*models.ChartRun, error))) error {
	if !r.mu.TryLock() {
		return errRunInProgress
	}
	do(func(ctx context.Context) (*models.ChartRun, error) {
		defer r.mu.Unlock()
		return r.execute(ctx)
	})
	return nil
}

// run führt einen Lauf in der aufrufenden Goroutine aus.
func (r *runner) run(ctx context.Context) (*models.ChartRun, error) {
	var (
		run    *models.ChartRun
		runErr error
	)
	if err := r.start(func(exec func(context.Context) (*models.ChartRun, error)) {
		run, runErr = exec(ctx)
	}); err != nil {
		return nil, err
	}
	return run, runErr
}

func (r *runner) execute(ctx context.Context) (*models.ChartRun, error) {
	accounts, err := services.LoadRoster(r.db)
	if err != nil {
		return nil, err
	}
	run, runErr := r.service.RunAccounts(ctx, time.Now(), accounts)
	if err := services.RecordRun(r.db, run); err != nil {
		r.log.Error("Failed to record chart run", zap.Error(err))
	}
	chartRunsCounter.WithLabelValues(run.Status).Inc()
	if errors.Is(runErr, services.ErrSchemaMismatch) {
		schemaMismatchCounter.Inc()
	}
	return run, runErr
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	loc, err := time.LoadLocation(cfg.ChartTimezone)
	if err != nil {
		logging.Fatal("Unknown chart timezone", zap.String("timezone", cfg.ChartTimezone), zap.Error(err))
	}

	// Datenbank
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	logging.Info("Running database auto-migration...")
	if err := db.AutoMigrate(&models.Account{}, &models.ChartRun{}); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}
	services.SeedDefaultAccounts(db, logging)

	// Ablage und Provider
	store, err := storage.Open(context.Background(), cfg.Storage)
	if err != nil {
		logging.Fatal("Storage setup failed", zap.Error(err))
	}
	logging.Info("Storage ready", zap.String("backend", cfg.StorageBackend))

	fetcher, err := weibo.NewFetcher(cfg, logging)
	if err != nil {
		logging.Fatal("Weibo fetcher setup failed", zap.Error(err))
	}

	layout, err := services.NewReportLayout(cfg.Report)
	if err != nil {
		logging.Fatal("Invalid report layout", zap.Error(err))
	}
	reports := services.NewReportService(store, layout, logging)

	chartService := &services.ChartService{
		Provider:         fetcher,
		Store:            store,
		Reports:          reports,
		Logger:           logging,
		Location:         loc,
		GroupContainerID: cfg.GroupContainerID,
		LineCount:        cfg.IndividualLineCount,
		ReportBaseURL:    cfg.ReportBaseURL,
	}
	if cfg.NotifyURL != "" {
		chartService.Notifier = qqbot.NewNotifier(cfg, logging)
		logging.Info("Group notification enabled", zap.Int64("group_id", cfg.NotifyGroupID))
	}
	jobs := &runner{db: db, service: chartService, log: logging}

	// Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupAccountRoutes(router, db, logging)
	setupRunRoutes(router, db, jobs)
	setupReportRoutes(router, reports, logging)
	setupExtractRoutes(router, cfg)

	// Cron
	cronScheduler := cron.New(cron.WithLocation(loc))
	_, err = cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled chart job...")
		run, err := jobs.run(context.Background())
		if err != nil {
			logging.Error("Cron job failed", zap.Error(err))
			return
		}
		logging.Info("Cron job completed", zap.String("chart_date", run.ChartDate), zap.String("report", run.ReportLink))
	})
	if err != nil {
		logging.Fatal("Invalid cron schedule", zap.String("schedule", cfg.CronSchedule), zap.Error(err))
	}
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupAccountRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/accounts")
	rg.GET("/", func(c *gin.Context) {
		accounts, err := services.LoadRoster(db)
		if err != nil {
			log.Error("Database query for accounts failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, accounts)
	})
	rg.POST("/", func(c *gin.Context) {
		var account models.Account
		if err := c.ShouldBindJSON(&account); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		account.ID = 0
		account.Name = strings.TrimSpace(account.Name)
		if account.Name == "" || account.UID <= 0 || account.ChartID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name, uid and chart_id are required"})
			return
		}
		if err := db.Create(&account).Error; err != nil {
			log.Error("Failed to create account", zap.String("name", account.Name), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
			return
		}
		c.JSON(http.StatusCreated, account)
	})
	rg.DELETE("/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		res := db.Delete(&models.Account{}, id)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func setupRunRoutes(router *gin.Engine, db *gorm.DB, jobs *runner) {
	rg := router.Group("/runs")
	rg.POST("/", func(c *gin.Context) {
		err := jobs.start(func(exec func(context.Context) (*models.ChartRun, error)) {
			go func() {
				run, err := exec(context.Background())
				if err != nil {
					jobs.log.Error("Async chart run failed", zap.Error(err))
					return
				}
				jobs.log.Info("Async chart run completed", zap.String("chart_date", run.ChartDate), zap.Int("focus_rank", run.FocusRank))
			}()
		})
		if errors.Is(err, errRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "Chart run triggered."})
	})
	rg.GET("/", func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		runs, err := services.RecentRuns(db, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, runs)
	})
}

// styleOverrides sammelt Query-Parameter der Form "<tabelle>.<option>".
func styleOverrides(query map[string][]string) (map[string]services.StyleOverride, error) {
	opts := map[string]map[string]string{}
	for key, values := range query {
		table, option, ok := strings.Cut(key, ".")
		if !ok || len(values) == 0 {
			continue
		}
		if table != services.ComparisonTableID && table != services.GroupTableID {
			continue
		}
		if opts[table] == nil {
			opts[table] = map[string]string{}
		}
		opts[table][option] = values[len(values)-1]
	}
	overrides := map[string]services.StyleOverride{}
	for table, o := range opts {
		s, err := services.ParseStyle(o)
		if err != nil {
			return nil, err
		}
		overrides[table] = s
	}
	return overrides, nil
}

func setupReportRoutes(router *gin.Engine, reports *services.ReportService, log *zap.Logger) {
	router.GET("/reports/:date", func(c *gin.Context) {
		date := c.Param("date")
		if _, err := services.ParseChartDate(date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		overrides, err := styleOverrides(c.Request.URL.Query())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		report, err := reports.Render(c.Request.Context(), date, overrides)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no tables stored for " + date})
			return
		case errors.Is(err, services.ErrMalformedStyleDirective):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case err != nil:
			log.Error("Report rendering failed", zap.String("date", date), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "rendering failed"})
			return
		}
		c.Header("X-Focus-Rank", strconv.Itoa(report.FocusRank))
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(report.HTML))
	})
}

func setupExtractRoutes(router *gin.Engine, cfg *config.Config) {
	rg := router.Group("/extract")

	readDocument := func(c *gin.Context) (*document.Node, bool) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read body"})
			return nil, false
		}
		doc, err := document.Parse(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		return doc, true
	}

	rg.POST("/individual", func(c *gin.Context) {
		name := strings.TrimSpace(c.Query("name"))
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter name is required"})
			return
		}
		expected := cfg.IndividualLineCount
		if raw := c.Query("lines"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lines"})
				return
			}
			expected = n
		}
		doc, ok := readDocument(c)
		if !ok {
			return
		}
		rec, lines, err := services.ExtractIndividual(doc, services.IndividualPolicy{Name: name, ExpectedLines: expected})
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "lines": lines})
			return
		}
		c.JSON(http.StatusOK, gin.H{"fields": rec.Fields(), "lines": lines})
	})

	rg.POST("/group", func(c *gin.Context) {
		doc, ok := readDocument(c)
		if !ok {
			return
		}
		section, blocks, err := services.ExtractGroup(doc)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "blocks": blocks})
			return
		}
		entries := make([][]services.Field, len(section.Entries))
		for i, e := range section.Entries {
			entries[i] = e.Fields()
		}
		c.JSON(http.StatusOK, gin.H{"preamble": section.Preamble.Fields(), "entries": entries})
	})
}
