/*
Package segmentation finds change points in numeric sequences with the
classification score profile (ClaSP) method.

Every candidate split t of a sequence is scored by labelling the sliding
windows before t as one class and the windows after it as the other, then
cross validating a nearest neighbour classifier on that labelling. The
area under its ROC curve is high where the two sides look different. The
Segmenter accepts the best scoring split, divides the sequence there, and
keeps splitting the most promising region until the change point budget
is spent or no region scores above the acceptance threshold.
*/
package segmentation
