package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsumeRack(t *testing.T) {
	t.Run("removes one occurrence per distinct letter", func(t *testing.T) {
		rack := []byte("AABCDEF")
		placements := []Placement{
			{Row: 7, Col: 6, Letter: 'A'},
			{Row: 7, Col: 7, Letter: 'A'},
		}
		got := ConsumeRack(rack, placements)
		require.Equal(t, "ABCDEF", string(got))
	})

	t.Run("every blank placement debits a wildcard", func(t *testing.T) {
		rack := []byte("A?B?CDE")
		placements := []Placement{
			{Row: 7, Col: 6, Letter: Blank, BlankAs: 'X'},
			{Row: 7, Col: 7, Letter: Blank, BlankAs: 'Y'},
		}
		got := ConsumeRack(rack, placements)
		require.Equal(t, "ABCDE", string(got))
	})

	t.Run("blank placement never debits the mapped letter", func(t *testing.T) {
		rack := []byte("X?XAB")
		placements := []Placement{
			{Row: 7, Col: 7, Letter: Blank, BlankAs: 'X'},
		}
		got := ConsumeRack(rack, placements)
		require.Equal(t, "XXAB", string(got))
	})

	t.Run("survivor order preserved", func(t *testing.T) {
		rack := []byte("ZCATBQ")
		placements := []Placement{
			{Row: 7, Col: 6, Letter: 'C'},
			{Row: 7, Col: 7, Letter: 'A'},
			{Row: 7, Col: 8, Letter: 'T'},
		}
		got := ConsumeRack(rack, placements)
		require.Equal(t, "ZBQ", string(got))
	})

	t.Run("letter not in rack leaves rack unchanged", func(t *testing.T) {
		rack := []byte("ABC")
		placements := []Placement{{Row: 7, Col: 7, Letter: 'Z'}}
		got := ConsumeRack(rack, placements)
		require.Equal(t, "ABC", string(got))
	})
}

func TestRackPoints(t *testing.T) {
	require.Equal(t, 0, RackPoints(nil))
	require.Equal(t, 10+10+0, RackPoints([]byte("QZ?")))
	require.Equal(t, 1+1+1, RackPoints([]byte("AET")))
}
