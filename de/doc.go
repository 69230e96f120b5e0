// Package de implements bounded differential evolution, a population-based
// derivative-free global minimizer (DE/rand/1/bin with per-generation dithered
// mutation). Runs are fully deterministic for a fixed seed: each call owns its
// random-number generator and shares no state with other calls.
package de
