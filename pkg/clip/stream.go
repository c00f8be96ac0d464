// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clip

import (
	"strings"

	"github.com/ef-ds/deque/v2"
)

// TokenStream is the mutable token queue a parse consumes from the front.
type TokenStream struct {
	q *deque.Deque[string]
}

// NewTokenStream returns a stream over tokens, in order.
func NewTokenStream(tokens []string) *TokenStream {
	s := &TokenStream{q: deque.New[string]()}
	s.Push(tokens...)
	return s
}

// Push appends tokens to the back of the stream.
func (s *TokenStream) Push(tokens ...string) {
	for _, t := range tokens {
		s.q.PushBack(t)
	}
}

// Len reports how many tokens remain.
func (s *TokenStream) Len() int { return s.q.Len() }

// Peek returns the front token without consuming it.
func (s *TokenStream) Peek() (string, bool) { return s.q.Front() }

// Next consumes the front token.
func (s *TokenStream) Next() (string, bool) { return s.q.PopFront() }

// Take consumes up to n tokens from the front.
func (s *TokenStream) Take(n int) []string {
	out := make([]string, 0, min(n, s.q.Len()))
	for range n {
		t, ok := s.q.PopFront()
		if !ok {
			break
		}
		out = append(out, t)
	}
	return out
}

// Drain consumes every remaining token.
func (s *TokenStream) Drain() []string {
	return s.Take(s.q.Len())
}

// ExpandClusters splits clustered short options into one token per
// character: "-abc" becomes "-a", "-b", "-c". Long options ("--x") and
// tokens of length two or less are kept as they are.
func ExpandClusters(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !isCluster(t) {
			out = append(out, t)
			continue
		}
		for _, r := range t[1:] {
			out = append(out, "-"+string(r))
		}
	}
	return out
}

func isCluster(t string) bool {
	return len(t) > 2 && strings.HasPrefix(t, "-") && !strings.HasPrefix(t, "--")
}
