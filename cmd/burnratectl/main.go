// Command burnratectl is a REPL client for a running BURNRATE server,
// adapted from the teacher's tools/console.go login-loop/command-loop
// shape: a bufio.Reader command prompt driving plain http.Post/http.Get
// calls against the JSON API.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

var ServerURL = "http://localhost:8080"
var APIKey string
var PlayerName string

type worldStatus struct {
	Tick        int64 `json:"tick"`
	Season      int   `json:"season"`
	SeasonStart int64 `json:"season_start"`
}

type joinResponse struct {
	ID     string `json:"ID"`
	Name   string `json:"Name"`
	APIKey string `json:"APIKey"`
}

func main() {
	if url := os.Getenv("BURNRATE_SERVER"); url != "" {
		ServerURL = url
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("BURNRATE Command Link v1.0")
	fmt.Printf("Target Server: %s\n", ServerURL)

	for {
		if !joinLoop(reader) {
			return
		}

		fmt.Println("\n--- COMMAND LINK ESTABLISHED ---")
		fmt.Printf("Welcome, Commander %s.\n", PlayerName)
		fmt.Println("Commands: status, me, travel, extract, ship, logout, quit")

		logout := false
		for !logout {
			fmt.Printf("[%s]> ", PlayerName)
			text, _ := reader.ReadString('\n')
			text = strings.TrimSpace(text)
			parts := strings.Fields(text)
			if len(parts) == 0 {
				continue
			}

			switch parts[0] {
			case "status":
				doStatus()
			case "me":
				doMe()
			case "travel":
				if len(parts) < 2 {
					fmt.Println("Usage: travel <zone_id>")
					continue
				}
				doTravel(parts[1])
			case "extract":
				if len(parts) < 2 {
					fmt.Println("Usage: extract <qty>")
					continue
				}
				qty, _ := strconv.Atoi(parts[1])
				doExtract(qty)
			case "ship":
				if len(parts) < 3 {
					fmt.Println("Usage: ship <kind> <zone1,zone2,...>")
					continue
				}
				doShip(parts[1], strings.Split(parts[2], ","))
			case "help":
				fmt.Println("Available Commands:")
				fmt.Println("  status                  - Server tick and season")
				fmt.Println("  me                      - Current player state")
				fmt.Println("  travel <zone_id>        - Move to an adjacent zone")
				fmt.Println("  extract <qty>           - Extract raw resource at a field")
				fmt.Println("  ship <kind> <path>      - Send a shipment along a path")
				fmt.Println("  logout                  - Return to join screen")
				fmt.Println("  quit                    - Disconnect")
			case "logout":
				logout = true
				APIKey, PlayerName = "", ""
			case "quit", "exit":
				fmt.Println("Disconnecting...")
				os.Exit(0)
			default:
				fmt.Println("Unknown command. Type 'help' for options.")
			}
		}
	}
}

func joinLoop(reader *bufio.Reader) bool {
	for {
		fmt.Println("\n--- JOIN BURNRATE ---")
		fmt.Print("Commander name: ")
		name, _ := reader.ReadString('\n')
		name = strings.TrimSpace(name)

		if name == "quit" || name == "exit" {
			return false
		}
		if name == "" {
			continue
		}

		fmt.Print("Connecting... ")
		if doJoin(name) {
			return true
		}
		fmt.Println("Join failed: name may already be taken.")
	}
}

func doJoin(name string) bool {
	payload := map[string]string{"Name": name}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(ServerURL+"/join", "application/json", bytes.NewBuffer(data))
	if err != nil {
		fmt.Printf("Connection error: %v\n", err)
		return false
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return false
	}
	var r joinResponse
	if err := json.Unmarshal(body, &r); err != nil {
		fmt.Printf("Protocol error: %v\n", err)
		return false
	}
	APIKey = r.APIKey
	PlayerName = r.Name
	fmt.Printf("Success! Commander %s established at a home hub.\n", r.Name)
	return true
}

func authedGet(path string) ([]byte, int) {
	req, _ := http.NewRequest(http.MethodGet, ServerURL+path, nil)
	req.Header.Set("X-API-Key", APIKey)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil, 0
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return body, resp.StatusCode
}

func authedPost(path string, payload interface{}) ([]byte, int) {
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, ServerURL+path, bytes.NewBuffer(data))
	req.Header.Set("X-API-Key", APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil, 0
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return body, resp.StatusCode
}

func doStatus() {
	resp, err := http.Get(ServerURL + "/world/status")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	var s worldStatus
	json.Unmarshal(body, &s)
	fmt.Printf("Tick: %s | Season: %d (started tick %s)\n",
		humanize.Comma(s.Tick), s.Season, humanize.Comma(s.SeasonStart))
}

func doMe() {
	body, status := authedGet("/me")
	if status != http.StatusOK {
		fmt.Printf("Request failed: %s\n", body)
		return
	}
	var pl map[string]interface{}
	json.Unmarshal(body, &pl)
	credits := 0
	if inv, ok := pl["Inventory"].(map[string]interface{}); ok {
		if c, ok := inv["credits"].(float64); ok {
			credits = int(c)
		}
	}
	fmt.Printf("%s | zone=%v | credits=%s | reputation=%v\n",
		pl["Name"], pl["CurrentZone"], humanize.Comma(int64(credits)), pl["Reputation"])
}

func doTravel(to string) {
	body, status := authedPost("/travel", map[string]string{"To": to})
	if status != http.StatusOK {
		fmt.Printf("Travel failed: %s\n", body)
		return
	}
	fmt.Println("Arrived.")
}

func doExtract(qty int) {
	body, status := authedPost("/extract", map[string]int{"Qty": qty})
	if status != http.StatusOK {
		fmt.Printf("Extraction failed: %s\n", body)
		return
	}
	fmt.Println("Extraction complete.")
}

func doShip(kind string, path []string) {
	payload := map[string]interface{}{"Kind": kind, "Path": path, "Cargo": map[string]int{}}
	body, status := authedPost("/ship", payload)
	if status != http.StatusCreated {
		fmt.Printf("Shipment failed: %s\n", body)
		return
	}
	fmt.Println("Shipment under way.")
}
