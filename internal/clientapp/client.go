package clientapp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fr3shw3b/varsync/pkg/client"
	"github.com/fr3shw3b/varsync/pkg/config"
	"github.com/fr3shw3b/varsync/pkg/state"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type RunParams struct {
	ServerHost   string
	ServerPort   int
	Path         string
	BindingsFile string
	// Writes in the form channel:var=value, the value is parsed as JSON
	// and used as a string when that fails.
	Sets []string
}

func Run(params *RunParams) error {
	err := godotenv.Load(".env.client")
	if err != nil && !os.IsNotExist(err) {
		log.Fatal("Failed to load environment variables: ", err)
	}

	conf, err := config.LoadForClient()
	if err != nil {
		log.Fatal("Failed to load configuration for client: ", err)
	}

	customFormatter := new(logrus.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02T15:04:05.999999999Z07:00"
	customFormatter.FullTimestamp = true
	logger := logrus.New()
	logger.SetFormatter(customFormatter)
	logLevel, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	bindingsFile := params.BindingsFile
	if bindingsFile == "" {
		bindingsFile = conf.BindingsFile
	}
	bindings, err := config.LoadBindings(bindingsFile)
	if err != nil {
		return err
	}

	clientInstance := client.NewDefaultClient(
		&client.ClientParams{
			ServerHost:     params.ServerHost,
			ServerPort:     params.ServerPort,
			Path:           params.Path,
			MaxDialRetries: conf.MaxDialRetries,
		},
		logger,
	)
	if err := clientInstance.Connect(); err != nil {
		return err
	}
	defer clientInstance.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, bind := range bindings.Bind {
		store := state.NewStore()
		for local := range bind.Vars {
			printChanges(store, bind.Channel, local)
		}
		attachment := clientInstance.Bind(ctx, bind.Channel, store, bind.Declarations())
		go func(channel string, joined <-chan struct{}) {
			select {
			case <-joined:
				logger.Info("joined channel ", channel)
			case <-ctx.Done():
			}
		}(bind.Channel, attachment.Joined())
	}

	joined := map[string]bool{}
	for _, set := range params.Sets {
		channel, name, value, err := parseSet(set)
		if err != nil {
			return err
		}
		// Held until the client closes.
		if !joined[channel] {
			joined[channel] = true
			clientInstance.Engine().Join(channel)
		}
		clientInstance.Set(channel, map[string]interface{}{name: value})
	}

	<-ctx.Done()
	return nil
}

func printChanges(store *state.Store, channel string, local string) {
	store.OnChange(local, func(value interface{}) {
		fmt.Printf("%s.%s = %v\n", channel, local, value)
	})
}

func parseSet(set string) (string, string, interface{}, error) {
	target, raw, found := strings.Cut(set, "=")
	if !found {
		return "", "", nil, fmt.Errorf("invalid set %q: expected channel:var=value", set)
	}
	channel, name, found := strings.Cut(target, ":")
	if !found || channel == "" || name == "" {
		return "", "", nil, fmt.Errorf("invalid set %q: expected channel:var=value", set)
	}

	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	return channel, name, value, nil
}
