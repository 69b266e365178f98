package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/hospital-receptionist/internal/app/bootstrap"
	"github.com/wolfman30/hospital-receptionist/internal/composer"
	appconfig "github.com/wolfman30/hospital-receptionist/internal/config"
	"github.com/wolfman30/hospital-receptionist/internal/dialogue"
	"github.com/wolfman30/hospital-receptionist/internal/generation"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

// llmtest sends one composed receptionist prompt to the configured provider
// and prints the raw and cleaned reply.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := appconfig.Load()
	logger := logging.New("error")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, closeClient, err := bootstrap.BuildGenerationClient(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("build client: %v", err)
	}
	defer closeClient()
	if client == nil {
		log.Fatalf("provider %q has no credentials configured", cfg.LLMProvider)
	}

	st := dialogue.NewState(time.Now())
	st.Step = dialogue.StepDoctorSuggestion
	st.Symptom, st.Department, st.Doctor = "chest tightness", "Cardiology", "Dr. Meera Sharma"

	history := []generation.Message{
		{Role: generation.RoleAssistant, Content: "Namaste, welcome. How can I assist you today?"},
		{Role: generation.RoleUser, Content: "I have had chest tightness since yesterday evening."},
	}
	req := composer.New(cfg.HospitalName, cfg.AssistantName).Compose(st, history, nil)

	fmt.Printf("provider: %s\n", cfg.LLMProvider)
	start := time.Now()
	resp, err := client.Complete(ctx, req)
	if err != nil {
		log.Fatalf("complete: %v", err)
	}
	fmt.Printf("latency:  %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("tokens:   in=%d out=%d stop=%s\n", resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.StopReason)
	fmt.Printf("raw:      %s\n", resp.Text)
	fmt.Printf("cleaned:  %s\n", composer.Clean(resp.Text))
}
