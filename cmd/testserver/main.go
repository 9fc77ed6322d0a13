// Command testserver runs a WebDAV-like HTTP server for load testing.
//
// Usage:
//
//	testserver [flags]
//
// Flags:
//
//	-port       Port to listen on (default: 8000)
//	-host       Host to bind to (default: localhost)
//	-username   Basic auth username (default: testuser)
//	-password   Basic auth password (default: testpassword)
//	-realm      Basic auth realm
//	-fail-rate  Percentage of evidence requests answered with 500
//	-delay      Fixed delay before each evidence response
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"davload/testserver"
)

func main() {
	port := flag.Int("port", 8000, "port to listen on")
	host := flag.String("host", "localhost", "host to bind to")
	username := flag.String("username", "testuser", "Basic auth username")
	password := flag.String("password", "testpassword", "Basic auth password")
	realm := flag.String("realm", "WebDAV Test Realm", "Basic auth realm")
	failRate := flag.Int("fail-rate", 0, "percentage of evidence requests answered with 500")
	delay := flag.Duration("delay", 0, "fixed delay before each evidence response")
	flag.Parse()

	server := testserver.NewServer(testserver.Config{
		Username: *username,
		Password: *password,
		Realm:    *realm,
		FailRate: *failRate,
		Delay:    *delay,
	})
	server.SetAccessLog(os.Stderr)

	addr := fmt.Sprintf("%s:%d", *host, *port)

	// Print available endpoints
	fmt.Println("WebDAV Test Server")
	fmt.Println("======================")
	fmt.Printf("Listening on http://%s\n\n", addr)
	fmt.Println("Endpoints:")
	fmt.Println("  HEAD /evidence/{XX}  - Evidence folder probe (00-FF)")
	fmt.Println("  GET  /evidence/{XX}  - Evidence folder listing")
	fmt.Printf("\nCredentials: %s / %s\n", *username, *password)
	fmt.Println("\nAccess log on stderr:")
	fmt.Println("  date time c-ip cs-method cs-uri-stem sc-status cs(User-Agent) cs-username")
	fmt.Println()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		os.Exit(0)
	}()

	log.Fatal(http.ListenAndServe(addr, server.Handler()))
}
