package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/arklim/account-guard/internal/core/domain"
	"github.com/arklim/account-guard/internal/core/port"
	"github.com/arklim/account-guard/internal/infra/config"
	"github.com/arklim/account-guard/internal/infra/dataset"
	"github.com/arklim/account-guard/internal/infra/events"
	"github.com/arklim/account-guard/internal/infra/logger"
	"github.com/arklim/account-guard/internal/infra/metrics"
	"github.com/arklim/account-guard/internal/infra/security"
	"github.com/arklim/account-guard/internal/repository/memory"
	"github.com/arklim/account-guard/internal/transport/console"
	"github.com/arklim/account-guard/internal/usecase"
)

// Options overrides process-level collaborators, mainly for tests.
type Options struct {
	In         io.Reader
	Out        io.Writer
	Logger     *zap.Logger
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Seed       domain.SeedAccounts
}

type Application struct {
	cfg      *config.AppConfig
	logger   *zap.Logger
	console  *console.Console
	gatherer prometheus.Gatherer
}

// New wires the application against stdin, stdout and the default Prometheus registry.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	return NewWithOptions(ctx, cfg, Options{})
}

func NewWithOptions(ctx context.Context, cfg *config.AppConfig, opts Options) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		var err error
		log, err = logger.New(cfg.App.Env)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	guardMetrics, err := metrics.New(metrics.Options{Registerer: registerer})
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	wordlist, err := dataset.LoadWordlist(cfg.Dataset.WordlistFile)
	if err != nil {
		return nil, fmt.Errorf("load wordlist: %w", err)
	}
	seed := opts.Seed
	if seed == nil {
		seed = dataset.SeedAccounts()
	}

	accounts := memory.NewAccountRepository(seed, memory.AccountOptions{
		HistorySize:      cfg.Policy.HistorySize,
		RenewalMonths:    cfg.Policy.RenewalMonths,
		SimilarityWindow: cfg.Policy.SimilarityWindow,
	})

	analyzer := security.NewSequenceAnalyzer(wordlist,
		security.WithDictionaryRun(cfg.Policy.DictionaryRun),
		security.WithKeyboardRun(cfg.Policy.KeyboardRun),
	)
	evaluator := security.NewPasswordStrengthEvaluator(analyzer, security.WithMinLength(cfg.Policy.MinLength))

	otpCfg := security.OTPConfig{
		Period:      cfg.TOTP.Period,
		Window:      cfg.TOTP.Window,
		Digits:      cfg.TOTP.Digits,
		SecretBytes: cfg.TOTP.SecretBytes,
	}
	otpFactory := func() (port.OTPVerifier, error) {
		return security.NewOTPEngine(otpCfg)
	}

	verifier, err := security.NewArgon2Hasher(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	cipher, err := security.NewAESCipher()
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	eventPublisher := events.NewLogPublisher(cfg.App, log)

	sessionService := usecase.NewSessionService(accounts, otpFactory, eventPublisher, log).
		WithMaxAttempts(cfg.Login.MaxAttempts).
		WithRenewalValidator(security.NewRenewalPolicy(0, cfg.Policy.MinEntropyScore)).
		WithMetrics(guardMetrics)
	credentialService := usecase.NewCredentialService(evaluator, cipher, security.NewRandomSalt(0), log).
		WithVerifier(verifier).
		WithMetrics(guardMetrics)

	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	cons := console.New(console.Dependencies{
		Sessions:    sessionService,
		Credentials: credentialService,
		Logger:      log,
	}, in, out)

	return &Application{
		cfg:      cfg,
		logger:   log,
		console:  cons,
		gatherer: gatherer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()

	metricsErrCh := make(chan error, 1)
	if addr := a.cfg.Metrics.Addr; addr != "" {
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			metricsErrCh <- metrics.Serve(metricsCtx, addr, a.gatherer, a.logger)
		}()
	}

	a.logger.Info("starting account guard",
		zap.String("env", a.cfg.App.Env),
		zap.Int("max_login_attempts", a.cfg.Login.MaxAttempts),
		zap.Duration("totp_window", a.cfg.TOTP.Window),
	)

	session, err := a.console.Run(ctx)
	if err != nil {
		return fmt.Errorf("run console: %w", err)
	}

	select {
	case err := <-metricsErrCh:
		if err != nil {
			a.logger.Warn("metrics endpoint stopped", zap.Error(err))
		}
	default:
	}

	a.logger.Info("session finished",
		zap.String("session_id", session.ID),
		zap.String("state", string(session.State)),
	)
	return nil
}
