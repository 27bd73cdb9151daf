// Command minmax exercises the thread handles: two workers scan a shared
// array, one for its extremes and one for its mean, then the extremes are
// replaced by the mean.
package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"proctl/core/thread"
)

type scan struct {
	values []int
	min    int
	max    int
	avg    float64
}

// findExtremes records the smallest and largest element. The pauses keep the
// two workers visibly interleaved.
func findExtremes(arg any) uint32 {
	s := arg.(*scan)
	s.min, s.max = s.values[0], s.values[0]
	for _, v := range s.values {
		if v < s.min {
			s.min = v
		}
		time.Sleep(7 * time.Millisecond)
		if v > s.max {
			s.max = v
		}
		time.Sleep(7 * time.Millisecond)
	}
	fmt.Printf("min = %d, max = %d\n", s.min, s.max)
	return 0
}

func average(arg any) uint32 {
	s := arg.(*scan)
	sum := 0
	for _, v := range s.values {
		sum += v
		time.Sleep(12 * time.Millisecond)
	}
	s.avg = float64(sum) / float64(len(s.values))
	fmt.Printf("average = %g\n", s.avg)
	return 0
}

func main() {
	in := bufio.NewReader(os.Stdin)

	var n int
	fmt.Print("array size: ")
	if _, err := fmt.Fscan(in, &n); err != nil || n <= 0 {
		fmt.Fprintln(os.Stderr, "minmax: need a positive array size")
		os.Exit(2)
	}
	values := make([]int, n)
	fmt.Printf("%d elements: ", n)
	for i := range values {
		if _, err := fmt.Fscan(in, &values[i]); err != nil {
			fmt.Fprintln(os.Stderr, "minmax: bad element:", err)
			os.Exit(2)
		}
	}

	s := &scan{values: values}

	extremes := thread.Create(findExtremes, s, thread.Options{Name: "min_max"})
	mean := thread.Create(average, s, thread.Options{Name: "average"})
	if !extremes.Valid() || !mean.Valid() {
		fmt.Fprintln(os.Stderr, "minmax: failed to start workers")
		os.Exit(1)
	}
	extremes.Join()
	mean.Join()

	for i, v := range values {
		if v == s.min || v == s.max {
			values[i] = int(s.avg)
		}
	}
	fmt.Print("rewritten:")
	for _, v := range values {
		fmt.Printf(" %d", v)
	}
	fmt.Println()
}
