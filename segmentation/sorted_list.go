package segmentation

import "sort"

// sortedList is an ascending list of floats supporting the insert,
// remove and median operations of a sliding median.
type sortedList []float64

// Insert adds the values, keeping the list sorted.
func (s *sortedList) Insert(floats ...float64) {
	for _, f := range floats {
		length := len(*s)
		*s = append(*s, f)
		if length != 0 && f < (*s)[length-1] {
			index := sort.SearchFloat64s((*s)[:length], f)
			copy((*s)[index+1:], (*s)[index:length])
			(*s)[index] = f
		}
	}
}

// Remove drops one occurrence of f. Values not in the list are ignored.
func (s *sortedList) Remove(f float64) {
	index := sort.SearchFloat64s(*s, f)
	if index == len(*s) || (*s)[index] != f {
		return
	}

	copy((*s)[index:], (*s)[index+1:])
	*s = (*s)[:len(*s)-1]
}

// Median of the list. The list must not be empty.
func (s *sortedList) Median() float64 {
	length := len(*s)
	center := length / 2
	if length%2 != 0 {
		return (*s)[center]
	}

	return ((*s)[center] + (*s)[center-1]) / 2.0
}
