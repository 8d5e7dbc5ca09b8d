package mirrorship_test

import (
	"context"
	"fmt"

	"github.com/hatch-labs/mirrorship"
)

// Capture batches to local Avro debug files without contacting the remote
// endpoint.
func Example_offline() {
	cfg := mirrorship.DefaultConfig()
	cfg.Endpoint = "https://ingest.example.com"
	cfg.WriterDisabled = true
	avro := true
	cfg.AvroEnabled = &avro
	cfg.OutputDir = "./debug"

	agent, err := mirrorship.New(cfg)
	if err != nil {
		fmt.Println("create:", err)
		return
	}
	defer agent.Close()

	res := agent.Process(context.Background(), []mirrorship.Record{
		{"event": "signup", "user": "u-42"},
	})
	if !res.Ok() {
		fmt.Println("process failed")
	}
}

// Ship batches to a remote endpoint with debug mirroring disabled.
func Example_shipping() {
	cfg := mirrorship.DefaultConfig()
	cfg.Endpoint = "https://ingest.example.com"
	cfg.AuthKey = "api-key"

	agent, err := mirrorship.New(cfg)
	if err != nil {
		fmt.Println("create:", err)
		return
	}
	defer agent.Close()

	res := agent.Process(context.Background(), []mirrorship.Record{
		{"event": "purchase", "amount": 9.99},
	})
	if res.SendErr != nil {
		fmt.Println("delivery failed:", res.SendErr)
	}
}
