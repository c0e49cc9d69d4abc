// Command capture is the terminal capture client. It pairs with a phone
// through the relay, routes incoming scans into the form, registers the
// finished form on the server and stages the resulting SAP row in the
// local tray until the staff has typed it into SAP.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/agroflow/logicapture/internal/config"
	"github.com/agroflow/logicapture/internal/records"
	"github.com/agroflow/logicapture/internal/scanner"
	"github.com/agroflow/logicapture/internal/tray"
)

func main() {
	relay := flag.String("relay", "http://localhost:8000", "Base URL of the LogiCapture server")
	lanHost := flag.String("host", "", "Host to bake into the pairing URL (LAN address reachable from the phone)")
	qrOut := flag.String("qr", "", "Write the pairing QR code as PNG to this path")
	apiToken := flag.String("token", "", "Access token for registering records on the server")
	trayPath := flag.String("tray", "sap_tray.json", "Path of the local SAP tray file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	base, err := url.Parse(*relay)
	if err != nil || base.Host == "" {
		log.Fatalf("Invalid relay URL: %s", *relay)
	}

	store, err := tray.Open(*trayPath)
	if err != nil {
		log.Fatalf("Failed to open SAP tray: %v", err)
	}
	fmt.Printf("🗂️  Bandeja SAP: %d filas pendientes (%s)\n", len(store.Items()), filepath.Clean(*trayPath))

	var api *apiClient
	if *apiToken != "" {
		api = newAPIClient(*relay, *apiToken)
	}

	session := scanner.NewPairingSession(base.Scheme, base.Host)
	if *lanHost != "" {
		session.SetHost(*lanHost)
	} else if cfg.Scanner.PublicHost != "" {
		session.SetHost(cfg.Scanner.PublicHost)
	}

	fmt.Println("📱 Escanea este enlace con el teléfono:")
	fmt.Printf("   %s\n", session.URL())

	if *qrOut != "" {
		png, err := session.QRPNG(256)
		if err != nil {
			log.Fatalf("Failed to render QR code: %v", err)
		}
		if err := os.WriteFile(*qrOut, png, 0o644); err != nil {
			log.Fatalf("Failed to write QR file: %v", err)
		}
		fmt.Printf("   QR guardado en %s\n", filepath.Clean(*qrOut))
	}

	bridge, err := scanner.NewBridge(*relay, session.Token, cfg.Scanner.ReconnectDelay)
	if err != nil {
		log.Fatalf("Failed to prepare bridge: %v", err)
	}

	var mu sync.Mutex
	form := scanner.FormState{LastFocused: scanner.FieldBooking}

	bridge.SetOnStatus(func(s scanner.Status) {
		switch s {
		case scanner.StatusLinked:
			fmt.Println("✅ Teléfono vinculado")
		case scanner.StatusConnected:
			fmt.Println("🔗 Conectado al relay, esperando teléfono...")
		case scanner.StatusDisconnected:
			fmt.Println("⚠️  Desconectado del relay, reintentando...")
		}
	})
	bridge.SetOnScan(func(payload string) {
		mu.Lock()
		next, outcome := scanner.RouteScan(form, payload)
		form = next
		mu.Unlock()
		fmt.Printf("📦 [%s] %s\n", outcome.Field, outcome.Message)
	})
	bridge.Start()
	defer bridge.Close()

	fmt.Println()
	fmt.Println("Comandos: foco <campo> | form | guardar | bandeja | quitar <registro> | salir")
	fmt.Println("  campos: booking, o_beta, awb, dam, dni, placas_tracto, placas_carreta,")
	fmt.Println("          ps_aduana, ps_operador, senasa, ps_linea, ps_beta_items, termografos_items")

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-quit:
			fmt.Println("\n📴 Cerrando sesión de captura")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "salir", "quit":
				fmt.Println("📴 Cerrando sesión de captura")
				return
			case "form":
				mu.Lock()
				printForm(form)
				mu.Unlock()
			case "foco":
				if len(fields) < 2 {
					fmt.Println("Uso: foco <campo>")
					continue
				}
				mu.Lock()
				form.LastFocused = fields[1]
				mu.Unlock()
				fmt.Printf("🎯 Foco en %s\n", fields[1])
			case "guardar":
				if api == nil {
					fmt.Println("⚠️  Necesitas un token de acceso (-token) para guardar")
					continue
				}
				mu.Lock()
				in := buildCreateInput(form)
				mu.Unlock()
				if stageRecord(api, store, in) {
					mu.Lock()
					form = scanner.FormState{LastFocused: scanner.FieldBooking}
					mu.Unlock()
				}
			case "bandeja":
				printTray(store)
			case "quitar":
				if len(fields) < 2 {
					fmt.Println("Uso: quitar <registro>")
					continue
				}
				id, err := strconv.ParseUint(fields[1], 10, 64)
				if err != nil {
					fmt.Println("Uso: quitar <registro>")
					continue
				}
				if err := store.Remove(uint(id)); err != nil {
					fmt.Printf("⚠️  No se pudo actualizar la bandeja: %v\n", err)
					continue
				}
				fmt.Printf("🧹 Registro %d retirado de la bandeja\n", id)
			default:
				fmt.Printf("Comando desconocido: %s\n", fields[0])
			}
		}
	}
}

// stageRecord registers the form on the server and stages the resulting SAP
// row in the tray. Returns true when the form can be reset.
func stageRecord(api *apiClient, store *tray.Store, in records.CreateInput) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := api.createRecord(ctx, in)
	if err != nil {
		var dup *duplicatesError
		if errors.As(err, &dup) {
			for _, d := range dup.items {
				fmt.Printf("⚠️  %s %s: %s\n", d.Type, d.Value, d.Message)
			}
			return false
		}
		fmt.Printf("⚠️  No se pudo guardar: %v\n", err)
		return false
	}

	row, err := api.sapRow(ctx, id)
	if err != nil {
		fmt.Printf("⚠️  Registro %d creado pero no se pudo leer su fila SAP: %v\n", id, err)
		return true
	}
	if err := store.Upsert(tray.Item{RecordID: id, Row: row}); err != nil {
		fmt.Printf("⚠️  Registro %d creado pero la bandeja no se pudo escribir: %v\n", id, err)
		return true
	}

	fmt.Printf("✅ Registro %d guardado y en bandeja SAP\n", id)
	return true
}

func printTray(store *tray.Store) {
	items := store.Items()
	if len(items) == 0 {
		fmt.Println("Bandeja SAP vacía")
		return
	}
	for _, it := range items {
		fmt.Printf("  #%d  %s  %s  %s  %s\n",
			it.RecordID, it.Row.Fecha, it.Row.Booking, it.Row.Placas, it.Row.Transportista)
	}
}

func printForm(f scanner.FormState) {
	fmt.Println("---- Formulario ----")
	fmt.Printf("  booking:         %s\n", f.Booking)
	fmt.Printf("  o_beta:          %s\n", f.OBeta)
	fmt.Printf("  awb:             %s\n", f.AWB)
	fmt.Printf("  dam:             %s\n", f.DAM)
	fmt.Printf("  dni:             %s\n", f.DNI)
	fmt.Printf("  placas_tracto:   %s\n", f.PlacaTracto)
	fmt.Printf("  placas_carreta:  %s\n", f.PlacaCarreta)
	fmt.Printf("  ps_aduana:       %s\n", f.PSAduana)
	fmt.Printf("  ps_operador:     %s\n", f.PSOperador)
	fmt.Printf("  senasa:          %s\n", f.Senasa)
	fmt.Printf("  ps_linea:        %s\n", f.PSLinea)
	fmt.Printf("  ps_beta:         %s\n", strings.Join(f.PSBetaItems, " / "))
	fmt.Printf("  termografos:     %s\n", strings.Join(f.TermografoItems, " / "))
	fmt.Printf("  foco:            %s\n", f.LastFocused)
}
