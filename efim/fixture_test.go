package efim

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"numahui/dbfile"
)

// syntheticInput deterministically expands a seed into n transaction
// lines using sha3.Sum256 as a fast, reproducible pseudo-random source —
// the same seeded-hash-as-PRNG technique the teacher's own test suite
// uses to generate deterministic fixture addresses.
func syntheticInput(seed byte, n, itemSpace int) string {
	var sb strings.Builder
	state := sha3.Sum256([]byte{seed})
	next := func() uint64 {
		state = sha3.Sum256(state[:])
		var v uint64
		for i := 0; i < 8; i++ {
			v = v<<8 | uint64(state[i])
		}
		return v
	}

	for i := 0; i < n; i++ {
		width := 1 + int(next()%4)
		seen := make(map[int]bool, width)
		items := make([]int, 0, width)
		for len(items) < width {
			it := 1 + int(next()%uint64(itemSpace))
			if seen[it] {
				continue
			}
			seen[it] = true
			items = append(items, it)
		}

		tu := uint64(0)
		utils := make([]uint64, len(items))
		for j := range items {
			u := 1 + next()%20
			utils[j] = u
			tu += u
		}

		for _, it := range items {
			sb.WriteString(strconv.Itoa(it))
			sb.WriteByte(' ')
		}
		sb.WriteString(": ")
		sb.WriteString(strconv.FormatUint(tu, 10))
		sb.WriteString(" : ")
		for j, u := range utils {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatUint(u, 10))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func TestRunOverSyntheticDatasetMatchesAcrossPartitionCounts(t *testing.T) {
	input := syntheticInput(7, 200, 12)

	onePart, err := dbfile.ParseReader(strings.NewReader(input), 1)
	require.NoError(t, err)
	e1 := NewEngine(singleNodeTopo(4), Config{MinUtil: 15, NumPartitions: 1, Thresholds: DefaultThresholds()})
	res1, err := e1.Run(onePart)
	require.NoError(t, err)

	fourPart, err := dbfile.ParseReader(strings.NewReader(input), 4)
	require.NoError(t, err)
	e2 := NewEngine(singleNodeTopo(4), Config{MinUtil: 15, NumPartitions: 4, Thresholds: DefaultThresholds()})
	res2, err := e2.Run(fourPart)
	require.NoError(t, err)

	require.Equal(t, keysOf(res1.HUIs), keysOf(res2.HUIs))
	require.NotEmpty(t, res1.HUIs)
}
