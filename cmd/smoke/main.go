package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// End-to-end smoke client for a running bauliver-api instance: registers a
// user, logs in, creates a permit, then drives one bot task to completion.
func main() {
	base := os.Getenv("BAULIVER_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	client := &http.Client{Timeout: 10 * time.Second}
	email := fmt.Sprintf("smoke-%d@example.com", rand.Int())
	password := "smoke-pass-1"

	mustPostJSON(client, base+"/api/auth/register", map[string]any{
		"email":    email,
		"name":     "Smoke User",
		"password": password,
	}, "", http.StatusCreated)

	loginResp, err := client.PostForm(base+"/api/auth/login", url.Values{
		"username": []string{email},
		"password": []string{password},
	})
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	login := decodeBody(loginResp, http.StatusOK, "login")
	token, _ := login["access_token"].(string)
	if token == "" {
		log.Fatalf("login returned no access token")
	}

	permit := mustPostJSON(client, base+"/api/permits", map[string]any{
		"customer_name":  "Smoke Customer",
		"address":        "1 Smoke Test Rd",
		"system_size_kw": 5.0,
	}, token, http.StatusCreated)
	if permit["status"] != "pending" {
		log.Fatalf("unexpected permit status: %v", permit["status"])
	}

	task := mustPostJSON(client, base+"/bot/tasks", map[string]any{
		"task_type":  "permit_processing",
		"input_data": map[string]any{"permit_id": permit["id"]},
	}, token, http.StatusOK)
	taskID, _ := task["id"].(string)
	if taskID == "" {
		log.Fatalf("task creation returned no id")
	}

	result := mustPostJSON(client, base+"/bot/tasks/"+taskID+"/execute", nil, token, http.StatusOK)
	if result["status"] != "completed" {
		log.Fatalf("task did not complete: %v", result["status"])
	}
	output, _ := result["output"].(map[string]any)
	if output["automated_checks_passed"] != true {
		log.Fatalf("automated checks did not pass: %v", output)
	}

	fmt.Printf("✅ bauliver-api smoke test passed: user=%s task=%s\n", email, taskID)
}

func mustPostJSON(client *http.Client, target string, body any, token string, wantStatus int) map[string]any {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			log.Fatalf("marshal %s: %v", target, err)
		}
	}
	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("request %s: %v", target, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("post %s: %v", target, err)
	}
	return decodeBody(resp, wantStatus, target)
}

func decodeBody(resp *http.Response, wantStatus int, what string) map[string]any {
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("decode %s: %v", what, err)
	}
	if resp.StatusCode != wantStatus {
		detail, _ := out["detail"].(string)
		if !strings.Contains(what, "://") {
			what = resp.Request.URL.String()
		}
		log.Fatalf("%s: status %d (want %d): %s", what, resp.StatusCode, wantStatus, detail)
	}
	return out
}
