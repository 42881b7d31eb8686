package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Contact mirrors the JSON shape of the REST API.
type Contact struct {
	Id         int64   `json:"id"`
	Name       *string `json:"name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Email      *string `json:"email,omitempty"`
	Company    *string `json:"company,omitempty"`
	Bookmarked bool    `json:"bookmarked"`
}

var seedContacts = []Contact{
	{Name: ptr("张伟"), Phone: ptr("13800138000"), Email: ptr("zhangwei@example.com"), Company: ptr("深算科技")},
	{Name: ptr("李娜"), Phone: ptr("010-12345678"), Email: ptr("lina@example.com")},
	{Name: ptr("Dirk Krummacker"), Phone: ptr("13912345678"), Company: ptr("ACME")},
}

// A small smoke client that seeds the address book and exercises the
// main endpoints against a running service.
//
// Usage example on the command line:
// > SERVICE_URL=http://localhost:8080 go run main.go
func main() {
	base := os.Getenv("SERVICE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	client := &http.Client{Timeout: 10 * time.Second}

	var firstId int64
	for _, contact := range seedContacts {
		body, _ := json.Marshal(contact)
		res, err := client.Post(base+"/api/contacts", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Println("create failed:", err)
			os.Exit(1)
		}
		var created Contact
		json.NewDecoder(res.Body).Decode(&created)
		res.Body.Close()
		// 409 means the seed data is already present from an earlier run.
		fmt.Printf("POST %-18s -> %d\n", *contact.Name, res.StatusCode)
		if res.StatusCode == http.StatusCreated && firstId == 0 {
			firstId = created.Id
		}
	}
	if firstId == 0 {
		// seeds were already present, pick any existing contact
		res, err := client.Get(base + "/api/contacts")
		if err != nil {
			fmt.Println("list failed:", err)
			os.Exit(1)
		}
		var contacts []Contact
		json.NewDecoder(res.Body).Decode(&contacts)
		res.Body.Close()
		if len(contacts) == 0 {
			fmt.Println("no contacts to work with")
			os.Exit(1)
		}
		firstId = contacts[0].Id
	}

	steps := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/contacts"},
		{http.MethodGet, "/api/contacts/search?keyword=138"},
		{http.MethodPut, fmt.Sprintf("/api/contacts/%d/bookmark", firstId)},
		{http.MethodGet, "/api/contacts/bookmarked"},
		{http.MethodPatch, fmt.Sprintf("/api/contacts/%d/bookmark/toggle", firstId)},
		{http.MethodDelete, fmt.Sprintf("/api/contacts/%d", firstId)},
	}
	for _, step := range steps {
		req, _ := http.NewRequest(step.method, base+step.path, nil)
		res, err := client.Do(req)
		if err != nil {
			fmt.Println("request failed:", err)
			os.Exit(1)
		}
		res.Body.Close()
		fmt.Printf("%-6s %-40s -> %d\n", step.method, step.path, res.StatusCode)
	}
}

func ptr(s string) *string {
	return &s
}
