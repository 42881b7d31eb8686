package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Waits until the addressbook service answers its health endpoint,
// then exits. Intended for scripting around service startup.
//
// Usage example on the command line:
// > SERVICE_URL=http://localhost:8080 go run main.go
func main() {
	url := os.Getenv("SERVICE_URL")
	if url == "" {
		url = "http://localhost:8080"
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 500 * time.Millisecond
	exp.Multiplier = 2.0
	exp.MaxInterval = 5 * time.Second

	op := func() (struct{}, error) {
		res, err := http.Get(url + "/health")
		if err != nil {
			fmt.Println(err)
			return struct{}{}, err
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			fmt.Printf("service answered with status %d, waiting\n", res.StatusCode)
			return struct{}{}, fmt.Errorf("unexpected status %d", res.StatusCode)
		}
		return struct{}{}, nil
	}

	_, err := backoff.Retry(
		context.Background(),
		op,
		backoff.WithBackOff(exp),
		backoff.WithMaxElapsedTime(2*time.Minute),
	)
	if err != nil {
		fmt.Println("service did not become available:", err)
		os.Exit(1)
	}
	fmt.Println("service is available")
}
