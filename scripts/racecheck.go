//go:build ignore

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Fires concurrent accept calls at every offer of one contract against a
// running server (AUTH_REQUIRED=false) and verifies that exactly one wins.

const baseURL = "http://localhost:8080"

func main() {
	rand.Seed(time.Now().UnixNano())

	fmt.Println("MoveBid Acceptance Race Check")
	fmt.Println("=============================")

	requesterID := createUser("requester", map[string]interface{}{
		"phone": fmt.Sprintf("98%08d", rand.Intn(100000000)),
		"name":  "Race Requester",
		"role":  "requester",
	})
	if requesterID == "" {
		log.Fatal("Failed to create requester")
	}

	const numDrivers = 10
	driverIDs := make([]string, 0, numDrivers)
	for i := 0; i < numDrivers; i++ {
		id := createUser("driver", map[string]interface{}{
			"phone":          fmt.Sprintf("91%08d", rand.Intn(100000000)),
			"name":           fmt.Sprintf("Race Driver %d", i),
			"role":           "driver",
			"license_number": fmt.Sprintf("DL%07d", rand.Intn(10000000)),
			"vehicle_number": fmt.Sprintf("KA%02dAB%04d", rand.Intn(99), rand.Intn(10000)),
			"capacity_kg":    1000,
		})
		if id == "" {
			log.Fatal("Failed to create driver")
		}
		driverIDs = append(driverIDs, id)
	}
	fmt.Printf("Created 1 requester and %d drivers\n", numDrivers)

	contractID := postJSON("/v1/contracts", map[string]interface{}{
		"requester_id":    requesterID,
		"title":           "Race check move",
		"mass_kg":         100,
		"volume_m3":       5,
		"price":           2500,
		"pickup_address":  "12 MG Road, Bangalore",
		"dropoff_address": "44 Residency Road, Bangalore",
		"move_at":         time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	if contractID == "" {
		log.Fatal("Failed to create contract")
	}
	fmt.Println("Created contract", contractID)

	offerIDs := make([]string, 0, numDrivers)
	for _, driverID := range driverIDs {
		offerID := postJSON("/v1/offers", map[string]interface{}{
			"contract_id": contractID,
			"driver_id":   driverID,
		})
		if offerID == "" {
			log.Fatal("Failed to create offer")
		}
		offerIDs = append(offerIDs, offerID)
	}
	fmt.Printf("Created %d offers, racing accepts...\n", len(offerIDs))

	var accepted, conflicted, failed int64
	var winners []string
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, offerID := range offerIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			resp, err := http.Post(baseURL+"/v1/offers/"+id+"/accept", "application/json", nil)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				return
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			switch resp.StatusCode {
			case 200:
				atomic.AddInt64(&accepted, 1)
				mu.Lock()
				winners = append(winners, id)
				mu.Unlock()
			case 400, 409:
				// Losers hit the "contract no longer requested" gate.
				atomic.AddInt64(&conflicted, 1)
			default:
				atomic.AddInt64(&failed, 1)
			}
		}(offerID)
	}
	wg.Wait()

	fmt.Println("\n=== Results ===")
	fmt.Printf("Accepted:  %d\n", accepted)
	fmt.Printf("Rejected by gate: %d\n", conflicted)
	fmt.Printf("Failed:    %d\n", failed)

	if accepted != 1 {
		log.Fatalf("RACE CHECK FAILED: %d offers accepted, want exactly 1", accepted)
	}
	fmt.Println("Winning offer:", winners[0])

	status := contractStatus(contractID)
	if status != "accepted" {
		log.Fatalf("RACE CHECK FAILED: contract status = %q, want accepted", status)
	}
	fmt.Println("Contract status: accepted")
	fmt.Println("\nRace check passed!")
}

func createUser(kind string, payload map[string]interface{}) string {
	id := postJSON("/v1/users", payload)
	if id == "" {
		log.Printf("Failed to create %s", kind)
	}
	return id
}

func postJSON(path string, payload map[string]interface{}) string {
	body, _ := json.Marshal(payload)
	resp, err := http.Post(baseURL+path, "application/json", bytes.NewBuffer(body))
	if err != nil {
		log.Printf("POST %s: %v", path, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != 201 {
		data, _ := io.ReadAll(resp.Body)
		log.Printf("POST %s: status %d: %s", path, resp.StatusCode, data)
		return ""
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ""
	}
	if id, ok := result["id"].(string); ok {
		return id
	}
	return ""
}

func contractStatus(contractID string) string {
	resp, err := http.Get(baseURL + "/v1/contracts/" + contractID)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ""
	}
	status, _ := result["status"].(string)
	return status
}
