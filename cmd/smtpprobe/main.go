// Command smtpprobe is an interactive probe for line-oriented request/reply
// servers. It connects, prints the greeting, and forwards each line typed
// on stdin as a raw protocol command, printing the reply block it provokes.
//
// Two input lines are treated specially: "starttls" upgrades the transport
// after the server accepts the command, and "quit" ends the session.
//
//	smtpprobe -p 25 mail.example.com
//	smtpprobe --tls -p 465 mail.example.com
package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/oxidelabs/smtpwire"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "smtpprobe: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("smtpprobe", flag.ContinueOnError)

	port := fs.IntP("port", "p", 25, "Server port")
	useTLS := fs.Bool("tls", false, "Implicit TLS from the first byte")
	insecure := fs.BoolP("insecure", "k", false, "Skip TLS certificate verification")
	timeoutSec := fs.IntP("timeout", "w", 30, "Per-operation timeout in seconds")
	idleSec := fs.Int("idle-timeout", 300, "Inactivity timeout in seconds (0 disables)")
	localAddr := fs.String("local", "", "Local IP address to bind to")
	proxyAddr := fs.String("proxy", "", "SOCKS5 proxy address (host:port)")
	ipv4 := fs.BoolP("ipv4", "4", false, "Use IPv4 only")
	ipv6 := fs.BoolP("ipv6", "6", false, "Use IPv6 only")
	verbose := fs.CountP("verbose", "v", "Increase verbosity (repeatable)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 1 || len(rest) > 2 {
		return fmt.Errorf("usage: smtpprobe [flags] host [port]")
	}
	host := rest[0]
	if len(rest) == 2 {
		p, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("invalid port %q", rest[1])
		}
		*port = p
	}

	level := slog.LevelWarn
	switch {
	case *verbose >= 2:
		level = slog.LevelDebug
	case *verbose == 1:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	config := smtpwire.DefaultConfig(host, *port)
	config.TLS = *useTLS
	config.LocalAddr = *localAddr
	config.SOCKSProxy = *proxyAddr
	config.IdleTimeout = time.Duration(*idleSec) * time.Second
	config.Logger = logger
	if *insecure {
		config.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	switch {
	case *ipv4 && *ipv6:
		return fmt.Errorf("-4 and -6 are mutually exclusive")
	case *ipv4:
		config.Family = "ip4"
	case *ipv6:
		config.Family = "ip6"
	}
	config.Events = &smtpwire.Events{
		OnReply: func(line smtpwire.ReplyLine) {
			fmt.Printf("S: %s\n", line.Text)
		},
		OnTimeout: func() {
			fmt.Fprintln(os.Stderr, "smtpprobe: inactivity timeout, quitting")
		},
		OnClose: func() {
			fmt.Fprintln(os.Stderr, "smtpprobe: connection closed")
		},
	}

	timeout := time.Duration(*timeoutSec) * time.Second
	ch := smtpwire.New(config)

	if _, err := ch.Connect(ctx, &smtpwire.ConnectOptions{Timeout: timeout}); err != nil {
		return err
	}
	defer ch.Close(ctx, timeout)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		input := strings.TrimRight(scanner.Text(), "\r\n")
		if input == "" {
			continue
		}

		reply, err := ch.Command(ctx, []byte(input+"\r\n"), &smtpwire.CommandOptions{Timeout: timeout})
		if err != nil {
			return err
		}

		switch strings.ToUpper(strings.Fields(input)[0]) {
		case "STARTTLS":
			if !reply.IsSuccess() {
				continue
			}
			if err := ch.UpgradeTLS(ctx, &smtpwire.UpgradeOptions{Timeout: timeout}); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "smtpprobe: transport upgraded to TLS")
		case "QUIT":
			return nil
		}
	}
	return scanner.Err()
}
