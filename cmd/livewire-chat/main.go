// Command livewire-chat is a minimal terminal client: it opens a live
// session, prints model output as it streams in, and turns stdin lines
// into user turns. Transient disconnects are ridden out by the client's
// reconnect loop.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/palomar-io/livewire"
	"github.com/palomar-io/livewire/config"
	"github.com/palomar-io/livewire/domain/entities"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("LIVEWIRE_CONFIG"))
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.APIKey == "" {
		logger.Fatal("GEMINI_API_KEY (or LIVEWIRE_API_KEY) is required")
	}

	client, err := livewire.New(cfg, livewire.WithLogger(logger))
	if err != nil {
		logger.Fatal("create client", zap.Error(err))
	}

	bus := client.Events()
	bus.OnSetupComplete(func() {
		fmt.Println("-- session ready --")
	})
	bus.OnContent(func(parts []*entities.Part) {
		for _, p := range parts {
			if p.Text != "" {
				fmt.Print(p.Text)
			}
		}
	})
	bus.OnAudio(func(b []byte) {
		logger.Debug("audio chunk", zap.Int("bytes", len(b)))
	})
	bus.OnTurnComplete(func() {
		fmt.Println()
	})
	bus.OnGoAway(func(g entities.GoAwayInfo) {
		fmt.Printf("-- server closing connection in %s --\n", g.TimeLeft)
	})
	bus.OnClose(func(ci entities.CloseInfo) {
		fmt.Printf("-- disconnected (%d %s) --\n", ci.Code, ci.Reason)
	})
	bus.OnError(func(err error) {
		fmt.Fprintf(os.Stderr, "transport error: %v\n", err)
	})

	session := entities.SessionConfig{
		ResponseModalities: []string{"TEXT"},
	}
	if err := client.Connect(context.Background(), cfg.Model, session); err != nil {
		logger.Fatal("connect", zap.Error(err))
	}

	info := client.SessionInfo()
	logger.Info("connected",
		zap.String("model", cfg.Model),
		zap.Bool("resumed", info.Handle != ""))

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			client.Send([]*entities.Part{{Text: line}}, true)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	client.Destroy()
}
