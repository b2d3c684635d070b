package main

import (
	"flag"
	"log"

	"github.com/themastyogi/fica-fda-chatbot/internal/config"
	"github.com/themastyogi/fica-fda-chatbot/internal/gateway"
)

const version = "0.0.1"

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	flag.Parse()

	log.Printf("Starting chat gateway v%s with config: %s", version, *configPath)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	gateway.New(*cfg).Serve()
}
