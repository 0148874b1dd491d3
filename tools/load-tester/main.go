package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/V4T54L/storesync/internal/signature"
)

func main() {
	targetURL := flag.String("url", "http://localhost:8080/webhooks", "Target webhook URL")
	shopDomain := flag.String("shop", "load-test.myshopify.com", "Shop domain header value")
	secret := flag.String("secret", "supersecretkey", "Webhook secret registered for the shop")
	topic := flag.String("topic", "products/create", "Webhook topic header value")
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	duration := flag.Duration("d", 30*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 1000, "Requests per second limit")
	flag.Parse()

	log.Printf("Starting load test on %s", *targetURL)
	log.Printf("Shop: %s, Topic: %s, Concurrency: %d, Duration: %s, RPS: %d", *shopDomain, *topic, *concurrency, *duration, *rps)

	var wg sync.WaitGroup
	var successCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), 100) // Allow bursts up to 100

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			client := &http.Client{
				Timeout: 5 * time.Second,
			}

			for {
				select {
				case <-ctx.Done():
					return
				default:
					limiter.Wait(ctx)

					// Unique external ids so every delivery inserts; rerun
					// with a fixed id to exercise the upsert path instead.
					payload := fmt.Sprintf(`{"id": "%s", "title": "load test product from worker %d", "vendor": "loadgen"}`,
						uuid.NewString(), workerID)

					req, err := http.NewRequestWithContext(ctx, http.MethodPost, *targetURL, bytes.NewBufferString(payload))
					if err != nil {
						continue // Should not happen
					}
					req.Header.Set("Content-Type", "application/json")
					req.Header.Set("X-Shopify-Shop-Domain", *shopDomain)
					req.Header.Set("X-Shopify-Topic", *topic)
					req.Header.Set("X-Shopify-Hmac-Sha256", signature.Compute(*secret, []byte(payload)))

					resp, err := client.Do(req)
					if err != nil {
						errorCount.Add(1)
						continue
					}

					if resp.StatusCode == http.StatusOK {
						successCount.Add(1)
					} else {
						errorCount.Add(1)
					}
					resp.Body.Close()
				}
			}
		}(i)
	}

	wg.Wait()

	totalRequests := successCount.Load() + errorCount.Load()
	actualRPS := float64(totalRequests) / duration.Seconds()

	log.Println("Load test finished.")
	log.Printf("Total Requests: %d", totalRequests)
	log.Printf("Successful (200 OK): %d", successCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Actual RPS: %.2f", actualRPS)
}
