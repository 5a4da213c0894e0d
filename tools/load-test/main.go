package main

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Fires repeated settle requests at the API to verify that concurrent
// retries of the same timesheet stay idempotent. Pass pre-created
// timesheet ids via the pattern below or adapt as needed.
func main() {
	// Configuration
	baseURL := "http://localhost:8080/api/v1"
	contentType := "application/json"

	numTimesheets := 500
	requestsPerTimesheet := 4 // Simulates double-taps and network retries
	totalRequests := numTimesheets * requestsPerTimesheet
	concurrency := 50 // Number of concurrent requests to avoid local port exhaustion

	fmt.Printf("Starting load test: %d timesheets (%d settle requests each) with concurrency %d\n", numTimesheets, requestsPerTimesheet, concurrency)

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency) // Semaphore to limit concurrency

	var successCount int64
	var failCount int64

	startTime := time.Now()

	for i := 0; i < numTimesheets; i++ {
		wg.Add(1)
		sem <- struct{}{} // Acquire token

		timesheetID := fmt.Sprintf("load-test-ts-%d", i)

		go func(tsID string) {
			defer wg.Done()
			defer func() { <-sem }() // Release token

			url := fmt.Sprintf("%s/timesheets/%s/settle", baseURL, tsID)

			for j := 0; j < requestsPerTimesheet; j++ {
				req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(nil))
				if err != nil {
					atomic.AddInt64(&failCount, 1)
					continue
				}
				req.Header.Set("Content-Type", contentType)
				req.Header.Set("X-User-ID", "load-test-employer")

				resp, err := http.DefaultClient.Do(req)
				if err != nil {
					atomic.AddInt64(&failCount, 1)
					continue
				}

				if resp.StatusCode >= 200 && resp.StatusCode < 300 {
					atomic.AddInt64(&successCount, 1)
				} else {
					atomic.AddInt64(&failCount, 1)
				}
				resp.Body.Close()
			}
		}(timesheetID)
	}

	wg.Wait()
	duration := time.Since(startTime)

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", totalRequests)
	fmt.Printf("Successful:     %d\n", successCount)
	fmt.Printf("Failed:         %d\n", failCount)
	fmt.Printf("Requests/Sec:   %.2f\n", float64(totalRequests)/duration.Seconds())
}
