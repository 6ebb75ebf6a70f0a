package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/umran/mqnotify"
)

// multiFlag collects repeated flag values.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	var (
		cfgPath     string
		requestPath string
		message     string
		logLevel    string
		targets     multiFlag
		data        multiFlag
	)
	flag.StringVar(&cfgPath, "config", "./notify.yaml", "path to config yaml")
	flag.StringVar(&requestPath, "request", "", "path to a yaml or json notification call (message, target, data)")
	flag.StringVar(&message, "message", "", "notification text")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.Var(&targets, "target", "queue url, arn or name (repeatable)")
	flag.Var(&data, "data", "extra parameter as key=value, value parsed as JSON when possible (repeatable)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfgPath, logLevel, requestPath, message, targets, data); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath, logLevel, requestPath, message string, targets, data []string) error {
	logger, err := mqnotify.NewLogger(logLevel, nil)
	if err != nil {
		return err
	}

	cfg, err := mqnotify.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	req, err := buildRequest(requestPath, message, targets, data)
	if err != nil {
		return err
	}

	d, err := mqnotify.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Deliver(ctx, req.Message, req.Data, req.Target)
}

// buildRequest loads the request file, if any, and applies the flags on top:
// -message replaces the text, -target and -data add to it.
func buildRequest(requestPath, message string, targets, data []string) (*mqnotify.Request, error) {
	req := &mqnotify.Request{}
	if requestPath != "" {
		loaded, err := mqnotify.LoadRequest(requestPath)
		if err != nil {
			return nil, err
		}
		req = loaded
	}

	if message != "" {
		req.Message = message
	}
	req.Target = append(req.Target, targets...)

	extra, err := parseData(data)
	if err != nil {
		return nil, err
	}
	if req.Data == nil {
		req.Data = make(map[string]mqnotify.Value, len(extra))
	}
	for k, v := range extra {
		req.Data[k] = v
	}

	return req, nil
}

func parseData(pairs []string) (map[string]mqnotify.Value, error) {
	extra := make(map[string]mqnotify.Value, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid -data %q, want key=value", pair)
		}

		var v mqnotify.Value
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = mqnotify.String(raw)
		}
		extra[key] = v
	}

	return extra, nil
}
