package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
)

const heartfireID = "7db219ea-2ed1-4a86-955c-d61ecedbc019"

// newUpstream serves a two-scraper aggregator where kanatacg has nothing and
// facetoface has Heartfire in stock.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server

	writeJSON := func(w http.ResponseWriter, body any) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode fixture: %v", err)
		}
	}

	mux.HandleFunc("GET /v1/cards", func(w http.ResponseWriter, r *http.Request) {
		hits := []any{}
		if r.URL.Query().Get("search") == "Heartfire" {
			hits = append(hits, map[string]any{
				"key":      "Heartfire",
				"metadata": map[string]any{"id": heartfireID, "released_at": "2019-05-03"},
			})
		}
		writeJSON(w, map[string]any{"cards": hits})
	})
	mux.HandleFunc("POST /v1/cards", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"cards": []any{map[string]any{
			"id":        heartfireID,
			"name":      "Heartfire",
			"set_name":  "War of the Spark",
			"image_url": srv.URL + "/img/heartfire.png",
		}}})
	})
	mux.HandleFunc("GET /v1/cards/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"id":          r.PathValue("id"),
			"name":        "Heartfire",
			"set_name":    "War of the Spark",
			"type_line":   "Instant",
			"released_at": "2019-05-03",
		})
	})
	mux.HandleFunc("GET /img/heartfire.png", func(w http.ResponseWriter, r *http.Request) {
		img := image.NewRGBA(image.Rect(0, 0, 8, 11))
		for y := 0; y < 11; y++ {
			for x := 0; x < 8; x++ {
				img.Set(x, y, color.RGBA{R: 200, G: uint8(x * 20), B: uint8(y * 20), A: 255})
			}
		}
		var buf bytes.Buffer
		_ = png.Encode(&buf, img)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	})
	mux.HandleFunc("GET /v1/scrapers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{
			map[string]any{"id": "kanatacg", "url": "https://kanatacg.example", "buylist": false, "selllist": true},
			map[string]any{"id": "facetoface", "url": "https://facetoface.example", "buylist": true, "selllist": true},
		})
	})
	mux.HandleFunc("GET /v1/scrapers/{scraper}/scrape/{card}", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ignore_sets") != "true" {
			http.Error(w, "ignore_sets required", http.StatusBadRequest)
			return
		}
		if r.PathValue("scraper") != "facetoface" {
			writeJSON(w, []any{})
			return
		}
		writeJSON(w, []any{map[string]any{
			"id":         123,
			"type":       "card",
			"scraperId":  "facetoface",
			"name":       "Heartfire",
			"set_name":   "War of the Spark",
			"url":        "https://facetoface.example/heartfire",
			"price":      "0.50",
			"currency":   "CAD",
			"foil":       false,
			"inStock":    true,
			"stock":      "3",
			"borderless": false,
			"condition":  "NM",
		}})
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
