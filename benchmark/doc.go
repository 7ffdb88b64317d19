// Package benchmark sends shop statistics to the benchmark service and hydrates its answer.
package benchmark
