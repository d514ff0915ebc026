// Package workload holds the CPU-bound functions used by the benchmark harness
// and the go test benchmarks.
package workload

import "math"

// DivisorSum returns the sum of the proper divisors of n (1 included, n
// excluded) for n > 1.
func DivisorSum(n int) int {
	res := 1
	limit := int(math.Sqrt(float64(n)))
	for i := 2; i <= limit; i++ {
		if n%i != 0 {
			continue
		}
		res += i
		if j := n / i; j > i {
			res += j
		}
	}
	return res
}

// IsPrime reports whether m is prime by trial division.
func IsPrime(m int) bool {
	if m < 2 {
		return false
	}
	limit := int(math.Sqrt(float64(m)))
	for i := 2; i <= limit; i++ {
		if m%i == 0 {
			return false
		}
	}
	return true
}

// Input returns n integers starting at 1,000,000, so every element costs about
// the same.
func Input(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 1_000_000 + i
	}
	return out
}
