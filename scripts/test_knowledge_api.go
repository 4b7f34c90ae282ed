package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	if len(os.Args) < 2 {
		color.Red("Usage: go run scripts/test_knowledge_api.go <file-to-ingest>")
		os.Exit(1)
	}
	filePath := os.Args[1]

	color.Cyan("Starting Knowledge Ingestion API Test\n")

	color.Yellow("\n1. Schedule ingestion")
	resp, body, err := sendRequest("POST", "/knowledge/v1", map[string]interface{}{
		"file_path":   filePath,
		"description": "smoke test source",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var scheduled struct {
		Data struct {
			TaskId   string `json:"task_id"`
			SourceId string `json:"source_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &scheduled); err != nil {
		color.Red("Failed to parse response: %v", err)
		os.Exit(1)
	}
	prettyPrint(scheduled)

	color.Yellow("\n2. Poll task until terminal")
	for i := 0; i < 60; i++ {
		_, body, err := sendRequest("GET", "/task/v1/"+scheduled.Data.TaskId, nil)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		var task struct {
			Data struct {
				Status string `json:"status"`
				Result string `json:"result"`
				Error  string `json:"error"`
			} `json:"data"`
		}
		json.Unmarshal(body, &task)
		fmt.Printf("  status=%s\n", task.Data.Status)
		if task.Data.Status == "completed" || task.Data.Status == "failed" {
			prettyPrint(task)
			break
		}
		time.Sleep(time.Second)
	}

	color.Yellow("\n3. Source status")
	_, body, _ = sendRequest("GET", "/knowledge/v1/"+scheduled.Data.SourceId, nil)
	var source map[string]interface{}
	json.Unmarshal(body, &source)
	prettyPrint(source)

	color.Yellow("\n4. Semantic search")
	_, body, _ = sendRequest("GET", "/search/v1?q=test&top_k=3", nil)
	var search map[string]interface{}
	json.Unmarshal(body, &search)
	prettyPrint(search)

	color.Green("\nDone.")
}
