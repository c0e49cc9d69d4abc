// Command scanpush emulates a paired phone from the terminal. It links the
// session and pushes one payload per stdin line through the relay, useful
// for exercising routing without a camera.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/agroflow/logicapture/internal/config"
	"github.com/agroflow/logicapture/internal/scanner"
)

func main() {
	relay := flag.String("relay", "http://localhost:8000", "Base URL of the LogiCapture server")
	token := flag.String("token", "", "Pairing token of the listening capture session")
	flag.Parse()

	if *token == "" {
		log.Fatal("A pairing token is required (-token)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pusher := scanner.NewPusher(*relay, *token, cfg.Scanner.Cooldown)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = pusher.Link(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to link with the capture session: %v", err)
	}
	fmt.Println("✅ Sesión vinculada, escribe un valor por línea")

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		payload := sc.Text()
		if payload == "" {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		accepted, err := pusher.Push(ctx, payload)
		cancel()

		switch {
		case !accepted:
			fmt.Println("⏳ Suprimido por cooldown")
		case err != nil:
			fmt.Printf("⚠️  Envío fallido: %v\n", err)
		default:
			fmt.Println("📦 Enviado")
		}
	}
	if err := sc.Err(); err != nil {
		log.Fatalf("stdin read error: %v", err)
	}
}
