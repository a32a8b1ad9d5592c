// Seed creates a demo user and sample todos through the running API.
// Run from project root: go run ./scripts/seed
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"taskboard/internal/models"
)

var client = &http.Client{Timeout: 10 * time.Second}

func main() {
	loadEnvFile(".env")

	base := strings.TrimRight(getEnv("SEED_BASE_URL", "http://localhost:8080"), "/")
	email := getEnv("SEED_EMAIL", "demo@example.com")
	password := getEnv("SEED_PASSWORD", "demo-password")
	total := 50

	token, err := session(base, email, password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Auth failed:", err)
		os.Exit(1)
	}

	priorities := []models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical}
	statuses := []models.Status{models.StatusPending, models.StatusInProgress, models.StatusCompleted}
	start := time.Now()
	for i := 0; i < total; i++ {
		title := fmt.Sprintf("Todo %d", i+1)
		desc := fmt.Sprintf("Description for todo %d", i+1)
		minutes := 15 * (i%8 + 1)
		unit := models.DurationMinutes
		body := models.TodoFields{
			Title:         &title,
			Description:   &desc,
			Status:        &statuses[i%len(statuses)],
			Priority:      &priorities[i%len(priorities)],
			DurationValue: &minutes,
			DurationUnit:  &unit,
		}
		if err := post(base+"/api/todos", token, body, http.StatusCreated, nil); err != nil {
			fmt.Fprintln(os.Stderr, "\nCreate failed:", err)
			os.Exit(1)
		}
		fmt.Printf("\rCreated %d / %d", i+1, total)
	}

	fmt.Printf("\nDone: %d todos for %s in %v\n", total, email, time.Since(start))
}

// session registers the demo user, falling back to login when it exists.
func session(base, email, password string) (string, error) {
	var res models.AuthResult
	err := post(base+"/api/auth/register", "", map[string]string{
		"name": "Demo User", "email": email, "password": password,
	}, http.StatusCreated, &res)
	if err == nil {
		return res.Token, nil
	}
	err = post(base+"/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	}, http.StatusOK, &res)
	return res.Token, err
}

func post(url, token string, body any, want int, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s: %d %s", url, resp.StatusCode, e.Error)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func loadEnvFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key, val = strings.TrimSpace(key), strings.Trim(strings.TrimSpace(val), `"'`)
		if key != "" && os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
}
