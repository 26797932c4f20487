package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	metricsclientset "k8s.io/metrics/pkg/client/clientset/versioned"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	ctrlconfig "sigs.k8s.io/controller-runtime/pkg/client/config"

	"github.com/nodeguardian/nodeguardian/internal/clock"
	ngconfig "github.com/nodeguardian/nodeguardian/internal/config"
	"github.com/nodeguardian/nodeguardian/internal/httpserver"
	"github.com/nodeguardian/nodeguardian/internal/selfmetrics"
	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
	"github.com/nodeguardian/nodeguardian/pkg/condition"
	"github.com/nodeguardian/nodeguardian/pkg/controlloop"
	"github.com/nodeguardian/nodeguardian/pkg/cooldown"
	"github.com/nodeguardian/nodeguardian/pkg/executor"
	"github.com/nodeguardian/nodeguardian/pkg/metrics"
	"github.com/nodeguardian/nodeguardian/pkg/notification"
	"github.com/nodeguardian/nodeguardian/pkg/notification/channels"
	"github.com/nodeguardian/nodeguardian/pkg/platform"
	"github.com/nodeguardian/nodeguardian/pkg/rulestore"
)

func newRunCommand() *cobra.Command {
	var healthAddr string

	c := &cobra.Command{
		Use:   "run",
		Short: "Run the control loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEngine(cmd.Context(), healthAddr)
		},
	}
	c.Flags().StringVar(&healthAddr, "health-addr", ":8080", "address the /healthz, /readyz, and /metrics endpoints bind to")
	return c
}

// runEngine builds an explicit, non-singleton engine context and runs it
// until interrupted. Every component is constructed once here and passed
// down by value or pointer — there is no package-level engine state
// anywhere in this tree.
func runEngine(ctx context.Context, healthAddr string) error {
	zapLog, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = zapLog.Sync() }()
	log := zapr.NewLogger(zapLog)
	ctrl.SetLogger(log)

	cfg, err := ngconfig.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	restCfg, err := restConfig()
	if err != nil {
		return fmt.Errorf("building kube config: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return fmt.Errorf("building clientset: %w", err)
	}
	metricsClient, err := metricsclientset.NewForConfig(restCfg)
	if err != nil {
		return fmt.Errorf("building metrics-server client: %w", err)
	}

	scheme := clientgoscheme.Scheme
	if err := ngv1.AddToScheme(scheme); err != nil {
		return fmt.Errorf("registering scheme: %w", err)
	}
	ctrlClient, err := client.NewWithWatch(restCfg, client.Options{Scheme: scheme})
	if err != nil {
		return fmt.Errorf("building controller-runtime client: %w", err)
	}

	platformAdapter := platform.New(platform.Config{
		Clientset:  clientset,
		CtrlClient: ctrlClient,
		Log:        log,
	})

	resolver, err := metrics.New(metrics.Config{
		PrometheusURL: cfg.PrometheusURL,
		MetricsClient: metricsClient,
		CoreClient:    clientset,
		Log:           log,
	})
	if err != nil {
		return fmt.Errorf("building metrics resolver: %w", err)
	}

	store := rulestore.New(cfg.StateDir, log)
	ledger := cooldown.New(cfg.StateDir, clock.Real{}, log)
	evaluator := condition.New(resolver)

	templateRegistry := notification.NewTemplateRegistry(rulestore.DefaultTemplates())
	dispatcher := notification.New(templateRegistry, buildChannels(cfg, log), cfg.DefaultChannels, log)
	exec := executor.New(platformAdapter, dispatcher, log)

	if cfg.SecretsDir != "" {
		watcher, err := ngconfig.NewWatcher(cfg.SecretsDir, log, func(newCfg *ngconfig.Config) {
			dispatcher.SetChannels(buildChannels(newCfg, log))
		})
		if err != nil {
			log.Error(err, "config watcher not started, alert channel credentials will not hot-reload", "dir", cfg.SecretsDir)
		} else {
			defer watcher.Close()
		}
	}

	promReg := prometheus.NewRegistry()
	selfMetrics := selfmetrics.New(promReg)

	var ready atomic.Bool
	if err := initialSync(ctx, platformAdapter, store, templateRegistry); err != nil {
		log.Error(err, "initial rule/template synchronization failed; continuing with an empty rule set")
	} else {
		ready.Store(true)
	}

	loop := controlloop.New(controlloop.Config{
		Platform:            platformAdapter,
		Store:               store,
		Ledger:              ledger,
		Evaluator:           evaluator,
		Executor:            exec,
		Resolver:            resolver,
		Clock:               clock.Real{},
		Log:                 log,
		MaxConcurrentChecks: cfg.MaxConcurrentChecks,
		Metrics:             selfMetrics,
	})

	health := httpserver.New(healthAddr, promReg, ready.Load, log)

	go watchAndApply(ctx, platformAdapter, store, ledger, templateRegistry, log)
	go func() {
		if err := health.Run(ctx); err != nil {
			log.Error(err, "health server stopped")
		}
	}()

	loop.Run(ctx)
	return nil
}

func restConfig() (*rest.Config, error) {
	if cfg, err := rest.InClusterConfig(); err == nil {
		return cfg, nil
	}
	return ctrlconfig.GetConfig()
}

// initialSync lists the current rule and template sets once at startup so
// the trigger driver's first tick has something to evaluate, ahead of the
// watch goroutine's own Synchronization replay.
func initialSync(ctx context.Context, p platform.Adapter, s *rulestore.Store, templates *notification.TemplateRegistry) error {
	rules, err := p.ListRules(ctx)
	if err != nil {
		return err
	}
	ptrs := make([]*ngv1.NodeGuardianRule, len(rules))
	for i := range rules {
		ptrs[i] = &rules[i]
	}
	s.ReconcileSync(ptrs)

	tmpls, err := p.ListTemplates(ctx)
	if err != nil {
		return err
	}
	for _, t := range tmpls {
		templates.Upsert(t.Name, t.Spec)
	}
	return nil
}

// watchAndApply drives the Rule Store and template registry from the
// platform's watch streams for the lifetime of ctx, clearing a rule's
// cooldown entries whenever a watch event removes it from the index
// (disabled or deleted). Synchronization replay events are skipped.
func watchAndApply(ctx context.Context, p platform.Adapter, s *rulestore.Store, ledger *cooldown.Ledger, templates *notification.TemplateRegistry, log logr.Logger) {
	ruleEvents, err := p.WatchRules(ctx)
	if err != nil {
		log.Error(err, "starting rule watch failed")
		return
	}
	templateEvents, err := p.WatchTemplates(ctx)
	if err != nil {
		log.Error(err, "starting template watch failed")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ruleEvents:
			if !ok {
				return
			}
			if ev.Type == platform.EventSynchronization {
				continue
			}
			removed, err := s.Apply(ev)
			if err != nil {
				log.Error(err, "applying rule watch event failed", "rule", ev.Rule.Name)
				continue
			}
			if removed != "" {
				if err := ledger.ClearRule(removed); err != nil {
					log.Error(err, "clearing cooldown entries failed", "rule", removed)
				}
			}
		case ev, ok := <-templateEvents:
			if !ok {
				return
			}
			switch ev.Type {
			case platform.EventSynchronization:
				continue
			case platform.EventDeleted:
				templates.Remove(ev.Template.Name)
			default:
				templates.Upsert(ev.Template.Name, ev.Template.Spec)
			}
		}
	}
}

func buildChannels(cfg *ngconfig.Config, log logr.Logger) []notification.Channel {
	chs := []notification.Channel{channels.NewLog(log)}
	if cfg.Email.Enabled {
		chs = append(chs, channels.NewEmail(cfg.Email, log))
	}
	if cfg.Webhook.Enabled {
		chs = append(chs, channels.NewWebhook(cfg.Webhook.URL, log))
	}
	if cfg.Chat.Enabled {
		chs = append(chs, channels.NewChat(cfg.Chat.WebhookURL, log))
	}
	return chs
}
