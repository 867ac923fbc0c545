// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

// Package reranking implements post-processing for recommendation diversity.
//
// Rerankers run after the engine has scored and sorted candidates and
// before the list is cut to the requested size:
//
//	Search -> Score (similarity + activity boosts) -> Rerankers -> Truncate
//
// # Available Rerankers
//
// Maximal Marginal Relevance (MMR) trades confidence for genre diversity so
// a query like "games like Hades" does not return ten roguelikes in a row.
// Lambda controls the tradeoff; 1.0 disables diversification.
//
// # Usage
//
//	engine.RegisterReranker(reranking.NewMMR(cfg.Recommend.DiversityLambda))
//
// All rerankers implement recommend.Reranker:
//
//	type Reranker interface {
//	    Name() string
//	    Rerank(ctx context.Context, items []GameRecommendation, k int) []GameRecommendation
//	}
//
// # Thread Safety
//
// Rerankers hold no mutable state and may be shared across requests.
package reranking
