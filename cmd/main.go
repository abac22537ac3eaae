package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/returnaddress/returnaddress-backend/internal/app"
	"github.com/returnaddress/returnaddress-backend/internal/platform/envutil"
)

func main() {
	_ = godotenv.Load()

	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Start()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		a.Log.Info("shutting down")
		a.Close()
		os.Exit(0)
	}()

	port := envutil.String("PORT", "8080")
	a.Log.Info("server listening", "port", port)
	if err := a.Run(":" + port); err != nil {
		a.Log.Error("server failed", "error", err)
		os.Exit(1)
	}
}
