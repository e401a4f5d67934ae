package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// RevalidateRequest is the body sent to each storefront's revalidation endpoint.
type RevalidateRequest struct {
	Path  string   `json:"path,omitempty"`
	Paths []string `json:"paths,omitempty"`
}

// RevalidationService pushes cache-invalidation signals to the configured
// storefront deployments. Every call is best-effort: failures are logged and
// never propagated to the calling workflow.
type RevalidationService struct {
	client   *resty.Client
	baseURLs []string
	secret   string
}

var Revalidator *RevalidationService

// InitializeRevalidator configures the shared revalidation service.
// With no storefront URLs or no secret it still returns a usable service
// whose calls degrade to logged no-ops.
func InitializeRevalidator(baseURLs []string, secret string) *RevalidationService {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	Revalidator = &RevalidationService{
		client:   client,
		baseURLs: baseURLs,
		secret:   secret,
	}

	if len(baseURLs) == 0 {
		log.Println("Revalidation disabled: no storefront URLs configured")
	} else if secret == "" {
		log.Println("Revalidation disabled: REVALIDATE_SECRET not set")
	} else {
		log.Printf("Revalidation enabled for %d storefront target(s)", len(baseURLs))
	}

	return Revalidator
}

// RevalidatePath invalidates a single path on every storefront target.
func (rs *RevalidationService) RevalidatePath(path string) {
	rs.send(RevalidateRequest{Path: path})
}

// RevalidatePaths invalidates a set of paths on every storefront target.
func (rs *RevalidationService) RevalidatePaths(paths []string) {
	if len(paths) == 0 {
		return
	}
	rs.send(RevalidateRequest{Paths: paths})
}

// send posts the request to all targets concurrently and waits for every
// attempt to settle, logging each outcome individually.
func (rs *RevalidationService) send(body RevalidateRequest) {
	if len(rs.baseURLs) == 0 || rs.secret == "" {
		log.Println("Skipping revalidation: storefront URLs or secret not configured")
		return
	}

	var wg sync.WaitGroup
	for _, baseURL := range rs.baseURLs {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()

			resp, err := rs.client.R().
				SetAuthToken(rs.secret).
				SetBody(body).
				Post(target + "/api/revalidate")

			if err != nil {
				log.Printf("Revalidation request to %s failed: %v", target, err)
				return
			}
			if resp.IsError() {
				log.Printf("Revalidation request to %s returned %d: %s", target, resp.StatusCode(), resp.String())
				return
			}
			log.Printf("Revalidated %s on %s", describe(body), target)
		}(baseURL)
	}
	wg.Wait()
}

func describe(body RevalidateRequest) string {
	if body.Path != "" {
		return body.Path
	}
	return fmt.Sprintf("%d paths", len(body.Paths))
}
