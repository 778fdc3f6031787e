package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// EvidenceTTL is how long a research result stays fresh in the cache
const EvidenceTTL = 24 * time.Hour

var ErrInvalidClaimType = goerr.New("invalid claim type")

type ClaimType string

const (
	ClaimTypeSourcing    ClaimType = "sourcing"
	ClaimTypePolicy      ClaimType = "policy"
	ClaimTypeControversy ClaimType = "controversy"
	ClaimTypeRecycling   ClaimType = "recycling"
)

// Validate checks if the claim type is valid
func (t ClaimType) Validate() error {
	switch t {
	case ClaimTypeSourcing, ClaimTypePolicy, ClaimTypeControversy, ClaimTypeRecycling:
		return nil
	default:
		return goerr.Wrap(ErrInvalidClaimType, "unknown claim type", goerr.V("type", t))
	}
}

// Source is one web search hit. It is kept even when its page could not be fetched.
type Source struct {
	Title   string `json:"title" firestore:"title"`
	URL     string `json:"url" firestore:"url"`
	Domain  string `json:"domain" firestore:"domain"`
	Snippet string `json:"snippet" firestore:"snippet"`
}

type Claim struct {
	Type        ClaimType `json:"type" firestore:"type"`
	Text        string    `json:"text" firestore:"text"`
	Materials   []string  `json:"materials" firestore:"materials"`
	Places      []string  `json:"places" firestore:"places"`
	CitationURL string    `json:"citationUrl" firestore:"citationUrl"`
	Confidence  float64   `json:"confidence" firestore:"confidence"`
}

type EvidencePack struct {
	Sources           []Source `json:"sources" firestore:"sources"`
	Claims            []Claim  `json:"claims" firestore:"claims"`
	OverallConfidence float64  `json:"overallConfidence" firestore:"overallConfidence"`
}

// OriginPin associates a material with a plausible place of origin
type OriginPin struct {
	Material    string  `json:"material" firestore:"material"`
	Place       string  `json:"place" firestore:"place"`
	Lat         float64 `json:"lat" firestore:"lat"`
	Lng         float64 `json:"lng" firestore:"lng"`
	CitationURL string  `json:"citationUrl" firestore:"citationUrl"`
	Confidence  float64 `json:"confidence" firestore:"confidence"`
}

// ResearchResult is the output of a research run and the unit stored in the cache
type ResearchResult struct {
	EvidencePack EvidencePack `json:"evidencePack" firestore:"evidencePack"`
	OriginPins   []OriginPin  `json:"originPins" firestore:"originPins"`
}

// CacheEntry is a stored ResearchResult with its expiry
type CacheEntry struct {
	Key          ProductKey   `json:"key" firestore:"key"`
	CreatedAt    time.Time    `json:"createdAt" firestore:"createdAt"`
	ExpiresAt    time.Time    `json:"expiresAt" firestore:"expiresAt"`
	EvidencePack EvidencePack `json:"evidencePack" firestore:"evidencePack"`
	OriginPins   []OriginPin  `json:"originPins" firestore:"originPins"`
}

// NewCacheEntry creates an entry expiring EvidenceTTL after now
func NewCacheEntry(key ProductKey, result *ResearchResult, now time.Time) *CacheEntry {
	return &CacheEntry{
		Key:          key,
		CreatedAt:    now,
		ExpiresAt:    now.Add(EvidenceTTL),
		EvidencePack: result.EvidencePack,
		OriginPins:   result.OriginPins,
	}
}

// Expired reports whether the entry must be treated as absent at now
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

func (e *CacheEntry) Result() *ResearchResult {
	return &ResearchResult{
		EvidencePack: e.EvidencePack,
		OriginPins:   e.OriginPins,
	}
}
