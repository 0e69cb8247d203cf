package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/optree/adapter"
	"github.com/justapithecus/optree/adapter/redis"
	"github.com/justapithecus/optree/adapter/webhook"
	"github.com/justapithecus/optree/cli/config"
	"github.com/justapithecus/optree/ioctx"
	"github.com/justapithecus/optree/op"
	"github.com/justapithecus/optree/ops"
	"github.com/justapithecus/optree/runner"
)

// RunCommand returns the `run` command: assembles an ioctx.Context from
// flags and an optional --config file, builds the demo Op tree, and
// drives it to completion with an OpRunner.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Run the example Op tree interactively, or record/replay a session",
		Flags:  RunFlags(),
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg := config.Config{Mode: "interactive"}
	if path := c.String("config"); path != "" {
		fileCfg, err := config.Load(path)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		cfg = *fileCfg
	}

	if c.IsSet("mode") || cfg.Mode == "" {
		cfg.Mode = c.String("mode")
	}
	if c.IsSet("session-file") {
		cfg.SessionFile = c.String("session-file")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}

	ioCfg := ioctx.Config{
		Mode:        ioctx.Mode(cfg.Mode),
		SessionFile: cfg.SessionFile,
		LogFile:     cfg.LogFile,
		StripANSI:   cfg.StripANSI,
	}

	ioc, err := ioctx.New(ioCfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("run: %v", err), 1)
	}
	defer ioc.Close()

	notifier, err := buildAdapter(cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("run: %v", err), 1)
	}
	if notifier != nil {
		defer notifier.Close()
	}

	root := rootOp(cfg, notifier)
	outcome := runner.New(root, ioc).Run(c.Context)

	if !outcome.OK() {
		tag, _ := outcome.Failure()
		if tag == op.FailureCanceled {
			return cli.Exit("", 0)
		}
		return cli.Exit(fmt.Sprintf("run: %s: %s", tag, outcome.Debug()), 1)
	}
	return nil
}

// buildAdapter constructs the NotifyOp downstream adapter cfg selects,
// or nil if neither Redis nor Webhook is configured.
func buildAdapter(cfg config.Config) (adapter.Adapter, error) {
	switch {
	case cfg.Redis != nil:
		return redis.New(redis.Config{URL: cfg.Redis.URL, Channel: cfg.Redis.Channel})
	case cfg.Webhook != nil:
		return webhook.New(webhook.Config{URL: cfg.Webhook.URL, Headers: cfg.Webhook.Headers})
	default:
		return nil, nil
	}
}

// rootOp builds the demo Op tree: a root menu fanning into all nine
// example Ops. With a notifier, each wrapped entry is followed by a
// NotifyOp and then returns to the menu; without one, the entry runs as
// a plain tail call and the run ends when it finishes. The filesystem
// browser is never wrapped, and the manual-notification entry always
// returns to the menu. The S3 transfer and cached lookup entries report
// themselves unconfigured rather than failing against a live backend
// when cfg doesn't supply one.
func rootOp(cfg config.Config, notifier adapter.Adapter) op.Op {
	var root *ops.RootMenuOp
	root = &ops.RootMenuOp{
		Title: "optree demo",
		Labels: []string{
			"Greet me (text input)",
			"Pick a fruit (menu)",
			"Browse filesystem",
			"Parse JSONC",
			"Fetch a URL",
			"Render a table",
			"Transfer an S3 object",
			"Cached lookup",
			"Publish a notification",
		},
		Children: func(idx int) op.Op {
			switch idx {
			case 0:
				return wrapWithNotify(root, notifier, &ops.TextInputOp{
					OpName: "demo.textinput",
					Prompt: "What's your name?",
				})
			case 1:
				return wrapWithNotify(root, notifier, &ops.MenuOp{
					OpName: "demo.menu",
					Title:  "Pick a fruit",
					Items:  []string{"apple", "pear", "plum"},
				})
			case 2:
				cwd, _ := os.Getwd()
				return &ops.FSBrowseOp{OpName: "demo.fsbrowse", Dir: cwd}
			case 3:
				return wrapWithNotify(root, notifier, &ops.JSONCParseOp{
					OpName: "demo.jsonc",
					Data:   []byte(`{"greeting": "hi" /* trailing */,}`),
				})
			case 4:
				return wrapWithNotify(root, notifier, &ops.FetchOp{
					OpName:  "demo.fetch",
					Method:  http.MethodGet,
					URL:     "https://httpbin.org/get",
					Timeout: 5 * time.Second,
					Retries: 1,
				})
			case 5:
				return wrapWithNotify(root, notifier, &ops.TableOp{
					OpName:  "demo.table",
					Title:   "Inventory",
					Headers: []string{"Item", "Qty"},
					Rows: [][]string{
						{"apple", "12"},
						{"pear", "7"},
						{"plum", "3"},
					},
				})
			case 6:
				return s3TransferChild(root, notifier, cfg.S3)
			case 7:
				return cachedLookupChild(root, notifier, cfg.CacheRedisURL)
			case 8:
				return &notifyTailCall{
					notify: &ops.NotifyOp{
						OpName:  "demo.notify",
						Adapter: notifier,
						Event:   adapter.NotificationEvent{OpName: "demo.notify", Outcome: "success", Detail: "manual notification from the demo menu"},
					},
					next: root,
				}
			default:
				return root
			}
		},
	}
	return root
}

// s3TransferChild builds the demo S3 upload Op, or a notConfiguredOp
// if s3Cfg is nil.
func s3TransferChild(root op.Op, notifier adapter.Adapter, s3Cfg *config.S3Config) op.Op {
	if s3Cfg == nil {
		return &notConfiguredOp{opName: "demo.s3", what: "S3 transfer", hint: "set s3: in --config"}
	}
	return wrapWithNotify(root, notifier, &ops.S3TransferOp{
		OpName:       "demo.s3",
		Direction:    ops.S3TransferUpload,
		Bucket:       s3Cfg.Bucket,
		Key:          s3Cfg.Key,
		Region:       s3Cfg.Region,
		Endpoint:     s3Cfg.Endpoint,
		UsePathStyle: s3Cfg.UsePathStyle,
		Data:         []byte("optree demo upload"),
	})
}

// cachedLookupChild builds the demo cached-lookup Op backed by
// redisURL, or a notConfiguredOp if redisURL is empty or unparseable.
func cachedLookupChild(root op.Op, notifier adapter.Adapter, redisURL string) op.Op {
	if redisURL == "" {
		return &notConfiguredOp{opName: "demo.cachedlookup", what: "cached lookup", hint: "set cacheRedisUrl: in --config"}
	}
	lookup, err := ops.NewCachedLookupOp(redisURL, "optree:demo:greeting")
	if err != nil {
		return &notConfiguredOp{opName: "demo.cachedlookup", what: "cached lookup", hint: err.Error()}
	}
	lookup.OpName = "demo.cachedlookup"
	lookup.Slow = func(context.Context) (any, error) { return "hello from the slow path", nil }
	return wrapWithNotify(root, notifier, lookup)
}

// notConfiguredOp reports a friendly failure for a demo menu entry
// whose backing config section is absent.
type notConfiguredOp struct {
	op.Base
	opName string
	what   string
	hint   string
}

func (o *notConfiguredOp) Name() string { return o.opName }

func (o *notConfiguredOp) Run(context.Context, *ioctx.Context) op.Outcome {
	return o.FailWithUnknownError(fmt.Sprintf("%s is not configured: %s", o.what, o.hint))
}

// wrapWithNotify runs child via the PUSH protocol, publishes a NotifyOp
// reporting its Outcome, then returns to root. When notifier is nil it
// returns child unchanged, so nothing follows child.
func wrapWithNotify(root op.Op, notifier adapter.Adapter, child op.Op) op.Op {
	if notifier == nil {
		return child
	}
	return &notifyThenReturn{child: child, notifier: notifier, root: root}
}

// notifyThenReturn pushes child, then builds a NotifyOp reporting
// child's Outcome, then tail-calls back to root.
type notifyThenReturn struct {
	op.Base
	child    op.Op
	notifier adapter.Adapter
	root     op.Op
}

func (o *notifyThenReturn) Name() string { return "notifyThenReturn(" + o.child.Name() + ")" }

func (o *notifyThenReturn) Run(context.Context, *ioctx.Context) op.Outcome {
	return o.HandleOutcome(o.child, func(result op.Outcome) op.Op {
		event := ops.NotifyForOutcome(o.child.Name(), result, 1)
		return &notifyTailCall{
			notify: &ops.NotifyOp{OpName: o.child.Name() + ".notify", Adapter: o.notifier, Event: event},
			next:   o.root,
		}
	})
}

// notifyTailCall runs notify, ignores its own Outcome, and tail-calls
// next regardless — a failed notification must not block the demo loop.
type notifyTailCall struct {
	op.Base
	notify op.Op
	next   op.Op
}

func (o *notifyTailCall) Name() string { return o.notify.Name() }

func (o *notifyTailCall) Run(context.Context, *ioctx.Context) op.Outcome {
	return o.HandleOutcome(o.notify, func(op.Outcome) op.Op { return o.next })
}
