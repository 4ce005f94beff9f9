package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options configures the guard collectors.
type Options struct {
	Registerer prometheus.Registerer
	Namespace  string
	Subsystem  string
}

// GuardMetrics exposes Prometheus collectors for login sessions and password scoring.
type GuardMetrics struct {
	LoginAttempts    *prometheus.CounterVec
	OTPVerifications *prometheus.CounterVec
	Assessments      *prometheus.CounterVec
	PasswordChanges  *prometheus.CounterVec
	Sessions         *prometheus.CounterVec
}

// New constructs the collectors and registers them with the provided registerer.
func New(opts Options) (*GuardMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "guard"
	}

	subsystem := opts.Subsystem
	if subsystem == "" {
		subsystem = "session"
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	loginAttempts, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "login_attempts_total",
		Help:      "Total number of password login attempts partitioned by outcome.",
	}, "outcome")
	if err != nil {
		return nil, err
	}

	otpVerifications, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "otp_verifications_total",
		Help:      "Total number of second-factor verification attempts partitioned by result.",
	}, "result")
	if err != nil {
		return nil, err
	}

	assessments, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "password_assessments_total",
		Help:      "Total number of password strength assessments partitioned by level.",
	}, "level")
	if err != nil {
		return nil, err
	}

	passwordChanges, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "password_changes_total",
		Help:      "Total number of password renewal attempts partitioned by outcome.",
	}, "outcome")
	if err != nil {
		return nil, err
	}

	sessions, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "completed_total",
		Help:      "Total number of finished sessions partitioned by final state.",
	}, "state")
	if err != nil {
		return nil, err
	}

	return &GuardMetrics{
		LoginAttempts:    loginAttempts,
		OTPVerifications: otpVerifications,
		Assessments:      assessments,
		PasswordChanges:  passwordChanges,
		Sessions:         sessions,
	}, nil
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels ...string) (*prometheus.CounterVec, error) {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("existing %s collector has unexpected type %T", opts.Name, already.ExistingCollector)
		}
		return nil, fmt.Errorf("register %s collector: %w", opts.Name, err)
	}
	return collector, nil
}

// ObserveLogin records a password attempt outcome. Safe on a nil receiver.
func (m *GuardMetrics) ObserveLogin(outcome string) {
	if m == nil || m.LoginAttempts == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// ObserveOTP records a verification result.
func (m *GuardMetrics) ObserveOTP(result string) {
	if m == nil || m.OTPVerifications == nil {
		return
	}
	m.OTPVerifications.WithLabelValues(result).Inc()
}

// ObserveAssessment records a scored password level.
func (m *GuardMetrics) ObserveAssessment(level string) {
	if m == nil || m.Assessments == nil {
		return
	}
	m.Assessments.WithLabelValues(level).Inc()
}

// ObservePasswordChange records a renewal attempt outcome.
func (m *GuardMetrics) ObservePasswordChange(outcome string) {
	if m == nil || m.PasswordChanges == nil {
		return
	}
	m.PasswordChanges.WithLabelValues(outcome).Inc()
}

// ObserveSession records the final state of a session.
func (m *GuardMetrics) ObserveSession(state string) {
	if m == nil || m.Sessions == nil {
		return
	}
	m.Sessions.WithLabelValues(state).Inc()
}

// Serve exposes gatherer on addr under /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting metrics endpoint", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("run metrics server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		return nil
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return err
	}
}
