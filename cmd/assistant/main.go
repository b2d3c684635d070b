package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/themastyogi/fica-fda-chatbot/internal/app"
	"github.com/themastyogi/fica-fda-chatbot/internal/chat"
	"github.com/themastyogi/fica-fda-chatbot/internal/config"
	"github.com/themastyogi/fica-fda-chatbot/internal/models"
	"github.com/themastyogi/fica-fda-chatbot/internal/persist"
	"github.com/themastyogi/fica-fda-chatbot/internal/policy"
	"github.com/themastyogi/fica-fda-chatbot/internal/view"
)

const version = "0.0.1"

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	flag.Parse()

	log.Printf("Starting compliance assistant v%s with config: %s", version, *configPath)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	state, err := persist.Open(cfg.State.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer state.Close()

	var responder chat.Responder
	if cfg.Responder.URL != "" {
		responder = chat.NewHTTPResponder(cfg.Responder.URL, time.Duration(cfg.Responder.TimeoutSeconds)*time.Second)
	} else {
		log.Println("No responder URL configured, using demo responses")
		responder = chat.NewCannedResponder(time.Duration(cfg.Responder.SimulatedLatencyMs) * time.Millisecond)
	}

	a, err := app.New(cfg, state, responder)
	if err != nil {
		log.Fatal(err)
	}

	if a.Restore() {
		fmt.Printf("Welcome back, %s\n", a.Sessions.Current().Account().DisplayName)
	}

	repl(a)
}

// repl is a minimal line-driven front end over the application
// facade. Rendering proper is out of scope; this exists so the
// assistant runs end to end.
func repl(a *app.App) {
	scanner := bufio.NewScanner(os.Stdin)
	printHelp(a)

	for {
		fmt.Printf("[%s] > ", a.View.State())
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		switch cmd {
		case "quit", "exit":
			return
		case "help":
			printHelp(a)
		case "login":
			email, secret, _ := strings.Cut(rest, " ")
			report(a.Login(email, secret))
		case "signup":
			parts := strings.SplitN(rest, " ", 3)
			if len(parts) < 3 {
				fmt.Println("usage: signup <email> <secret> <display name>")
				continue
			}
			report(a.Signup(parts[0], parts[1], parts[2]))
		case "logout":
			a.Logout()
		case "send":
			entry, err := a.Send(context.Background(), rest)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("assistant: %s\n", entry.Text)
			printQuota(a)
		case "transcript":
			for _, m := range a.Exchange.Transcript() {
				fmt.Printf("%s: %s\n", m.Origin, m.Text)
			}
		case "admin":
			report(a.RequestAdmin())
		case "back":
			report(a.Back())
		case "users":
			accounts, err := a.Accounts()
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			for _, acct := range accounts {
				limits := policy.LimitsFor(acct.Role)
				ceiling := "unlimited"
				if limits.Ceiling != policy.Unlimited {
					ceiling = fmt.Sprintf("%d", limits.Ceiling)
				}
				fmt.Printf("%s  %s  %s  %d/%s\n", acct.ID, acct.Email, acct.Role, acct.UsageCount, ceiling)
			}
		case "setrole":
			id, role, _ := strings.Cut(rest, " ")
			report(a.ChangeRole(id, models.ParseRole(role)))
		case "upgrade":
			report(a.RequestUpgrade())
		case "pay":
			if err := a.CompleteUpgrade(); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("Congratulations! You have been upgraded to Pro. You now have unlimited queries!")
		case "cancel":
			report(a.CancelUpgrade())
		default:
			fmt.Println("unknown command; try help")
		}
	}
}

func report(err error) {
	if err != nil {
		fmt.Println("error:", err)
	}
}

func printQuota(a *app.App) {
	session := a.Sessions.Current()
	if session == nil {
		return
	}
	acct := session.Account()
	remaining := policy.Remaining(acct.Role, acct.UsageCount)
	if remaining != policy.Unlimited {
		fmt.Printf("(%d queries remaining)\n", remaining)
	}
}

func printHelp(a *app.App) {
	if a.View.State() == view.StateUnauthenticated {
		fmt.Println("commands: login <email> <secret> | signup <email> <secret> <name> | quit")
		return
	}
	fmt.Println("commands: send <text> | transcript | admin | users | setrole <id> <role> | back | upgrade | pay | cancel | logout | quit")
}
