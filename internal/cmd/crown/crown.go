// Package crown parses crown command flags and runs the operator workflow:
// open the journal, optionally play a scenario, verify, and summarize.
package crown

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"google.golang.org/grpc/status"

	entrypoint "github.com/louisbranch/hippycrown/internal/platform/cmd"
	apperrors "github.com/louisbranch/hippycrown/internal/platform/errors"
	"github.com/louisbranch/hippycrown/internal/platform/i18n/catalog"
	crowndomain "github.com/louisbranch/hippycrown/internal/services/crown/domain/crown"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/engine"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
	"github.com/louisbranch/hippycrown/internal/services/crown/observability/audit"
	"github.com/louisbranch/hippycrown/internal/services/crown/storage"
	"github.com/louisbranch/hippycrown/internal/services/crown/storage/integrity"
	"github.com/louisbranch/hippycrown/internal/services/crown/storage/sqlite"
	"github.com/louisbranch/hippycrown/internal/tools/scenario"
)

// auditListLimit bounds how many rejected calls the summary reports.
const auditListLimit = 1000

// Config holds crown command configuration.
type Config struct {
	DBPath     string `env:"DB_PATH" envDefault:"data/crown.sqlite"`
	EngineID   string `env:"ENGINE_ID" envDefault:"main"`
	Admin      string `env:"ADMIN"`
	DefaultFee uint64 `env:"DEFAULT_FEE" envDefault:"1000000000000000000"`
	LogFile    string `env:"LOG_FILE"`
	Locale     string `env:"LOCALE" envDefault:"en-US"`

	// Script is a Lua scenario to play against the engine.
	Script string
	// AssertLogOnly logs scenario mismatches instead of failing.
	AssertLogOnly bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the crown journal database")
	fs.StringVar(&cfg.EngineID, "engine", cfg.EngineID, "Engine id to open or create")
	fs.StringVar(&cfg.Admin, "admin", cfg.Admin, "Administrator identity for a new engine")
	fs.Uint64Var(&cfg.DefaultFee, "fee", cfg.DefaultFee, "Default claim fee for a new engine")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for the summary output")
	fs.StringVar(&cfg.Script, "script", "", "Lua scenario to run against the engine")
	fs.BoolVar(&cfg.AssertLogOnly, "assert-log-only", false, "Log scenario mismatches instead of failing")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.EngineID) == "" {
		return Config{}, errors.New("engine id is required")
	}
	return cfg, nil
}

// Run opens the engine, runs the optional scenario, verifies the journal,
// and writes a summary to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCrown, func(ctx context.Context) error {
		return run(ctx, cfg, out)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	keyring, err := integrity.KeyringFromEnv()
	if err != nil {
		return fmt.Errorf("load event keyring: %w", err)
	}
	registry, err := crowndomain.NewEventRegistry()
	if err != nil {
		return fmt.Errorf("build event registry: %w", err)
	}
	store, err := sqlite.OpenEvents(ctx, cfg.DBPath, keyring, registry)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close crown store: %v", err)
		}
	}()
	return operate(ctx, cfg, out, store, registry, keyring.ActiveKeyID())
}

// operate drives one engine over store and writes the summary.
func operate(ctx context.Context, cfg Config, out io.Writer, store storage.Store, registry *event.Registry, activeKeyID string) error {
	var err error
	emitter := audit.NewEmitter(store)
	open := func(ctx context.Context, genesis crowndomain.Genesis) (*engine.Engine, error) {
		eng, err := engine.Open(ctx, store, genesis, engine.WithAudit(emitter), engine.WithRegistry(registry))
		if err != nil {
			return nil, err
		}
		eng.Subscribe(logEvent)
		return eng, nil
	}

	genesis := crowndomain.Genesis{
		EngineID:   strings.TrimSpace(cfg.EngineID),
		Admin:      crowndomain.NormalizeIdentity(cfg.Admin),
		DefaultFee: cfg.DefaultFee,
		CreatedAt:  time.Now().UTC(),
	}

	printer := message.NewPrinter(matchLocale(cfg.Locale))

	var eng *engine.Engine
	if cfg.Script != "" {
		runner := &scenario.Runner{
			Genesis: genesis,
			Open:    open,
			Logger:  log.Default(),
			Locale:  cfg.Locale,
		}
		if cfg.AssertLogOnly {
			runner.Assertions = scenario.AssertionLogOnly
		}
		result, err := runner.RunFile(ctx, cfg.Script)
		if err != nil {
			return fmt.Errorf("run scenario: %w", err)
		}
		eng = result.Engine
		printer.Fprintln(out, printer.Sprintf("crown.summary.scenario", cfg.Script, result.Steps, result.Rejected))
	} else {
		eng, err = open(ctx, genesis)
		if err != nil {
			return fmt.Errorf("open engine: %w", err)
		}
	}

	if err := store.VerifyChain(ctx, eng.ID()); err != nil {
		return fmt.Errorf("verify journal: %w", err)
	}
	rejected, err := store.ListAuditEvents(ctx, eng.ID(), auditListLimit)
	if err != nil {
		return fmt.Errorf("list audit events: %w", err)
	}
	for _, rejection := range rejected {
		st := apperrors.New(apperrors.Code(rejection.Code), rejection.Message).LocalizedStatus(cfg.Locale)
		localized, _ := apperrors.UserMessage(st)
		log.Printf("rejected %s by %s (%s): %s", rejection.CommandType, rejection.ActorID, status.Code(st), localized)
	}

	state := eng.State()
	printer.Fprintln(out, printer.Sprintf("crown.summary.engine", eng.ID(), eng.LastSeq()))
	if seq := eng.LastSeq(); seq > 0 {
		head, err := store.GetEventBySeq(ctx, eng.ID(), seq)
		if err != nil {
			return fmt.Errorf("load journal head: %w", err)
		}
		printer.Fprintln(out, printer.Sprintf("crown.summary.head", head.Seq, head.SignatureKeyID, activeKeyID))
	}
	printer.Fprintln(out, printer.Sprintf("crown.summary.holder", state.Holder.String(), state.Mood, state.Paused))
	if state.Vacant() {
		printer.Fprintln(out, printer.Sprintf("crown.summary.vacant"))
	}
	printer.Fprintln(out, printer.Sprintf("crown.summary.fee", state.Fee))
	printer.Fprintln(out, printer.Sprintf("crown.summary.rejections", len(rejected)))
	return nil
}

func logEvent(evt event.Event) {
	log.Printf("event %d %s by %s: %s", evt.Seq, evt.Type, evt.ActorID, evt.PayloadJSON)
}

// matchLocale picks the closest catalog locale for the requested tag.
func matchLocale(locale string) language.Tag {
	bundle := catalog.Default()
	supported := make([]language.Tag, 0, len(bundle.Locales()))
	for _, name := range bundle.Locales() {
		supported = append(supported, language.Make(name))
	}
	matcher := language.NewMatcher(supported)
	_, index, _ := matcher.Match(language.Make(strings.TrimSpace(locale)))
	return supported[index]
}
