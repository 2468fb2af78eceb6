package flightgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Domenick1991/skyconnect/internal/domain"
)

var seatColumns = []string{"A", "B", "C", "D", "E", "F"}

const seatRows = 10

type Seat struct {
	ID        string `json:"id"`
	Row       int    `json:"row"`
	Column    string `json:"column"`
	Available bool   `json:"available"`
}

// SeatMap is the mock cabin layout shared by every offer: rows 1-10, columns
// A-F, with a fixed pattern of occupied seats.
type SeatMap struct{}

func NewSeatMap() *SeatMap {
	return &SeatMap{}
}

func (m *SeatMap) Exists(seatID string) bool {
	_, _, ok := parseSeat(seatID)
	return ok
}

func (m *SeatMap) Available(leg domain.Leg, offerID, seatID string) bool {
	row, col, ok := parseSeat(seatID)
	if !ok {
		return false
	}
	return !occupied(row, col)
}

// Layout lists every seat row by row.
func (m *SeatMap) Layout(leg domain.Leg, offerID string) []Seat {
	seats := make([]Seat, 0, seatRows*len(seatColumns))
	for row := 1; row <= seatRows; row++ {
		for idx, col := range seatColumns {
			seats = append(seats, Seat{
				ID:        fmt.Sprintf("%d%s", row, col),
				Row:       row,
				Column:    col,
				Available: !occupied(row, idx),
			})
		}
	}
	return seats
}

func occupied(row, colIdx int) bool {
	return (row*colIdx)%7 == 0
}

func parseSeat(seatID string) (row, colIdx int, ok bool) {
	if len(seatID) < 2 {
		return 0, 0, false
	}
	colIdx = -1
	for i, c := range seatColumns {
		if strings.HasSuffix(seatID, c) {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return 0, 0, false
	}
	prefix := seatID[:len(seatID)-1]
	row, err := strconv.Atoi(prefix)
	if err != nil || row < 1 || row > seatRows || strconv.Itoa(row) != prefix {
		return 0, 0, false
	}
	return row, colIdx, true
}
