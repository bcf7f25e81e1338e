package main

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	// Configuration
	url := "http://localhost:8080/api/v1/remote-work"
	contentType := "application/json"

	numUsers := 2000
	requestsPerUser := 2
	totalRequests := numUsers * requestsPerUser
	concurrency := 50 // Number of concurrent requests to avoid local port exhaustion

	fmt.Printf("Starting load test: %d users (%d requests each) to %s with concurrency %d\n", numUsers, requestsPerUser, url, concurrency)

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency) // Semaphore to limit concurrency

	var successCount int64
	var failCount int64

	startTime := time.Now()

	for i := 0; i < numUsers; i++ {
		wg.Add(1)
		sem <- struct{}{} // Acquire token

		userID := int64(i + 1)

		go func(userID int64) {
			defer wg.Done()
			defer func() { <-sem }() // Release token

			for j := 0; j < requestsPerUser; j++ {
				date := time.Now().AddDate(0, 0, j).Format("2006-01-02")
				payload := []byte(fmt.Sprintf(`{"user":{"id":%d,"username":"load-test-user-%d"},"type":"homeoffice","date":"%s"}`, userID, userID, date))

				resp, err := http.Post(url, contentType, bytes.NewBuffer(payload))
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
		}(userID)
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
