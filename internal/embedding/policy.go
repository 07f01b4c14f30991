package embedding

// FacePolicy decides which face to use when an image contains several.
// The detector's ordering is accepted as-is for PolicyFirstDetected.
type FacePolicy string

const (
	PolicyFirstDetected FacePolicy = "first"
	PolicyLargestArea   FacePolicy = "largest"
)

// ParsePolicy maps a config string onto a policy, defaulting to first-detected.
func ParsePolicy(s string) FacePolicy {
	if s == string(PolicyLargestArea) {
		return PolicyLargestArea
	}
	return PolicyFirstDetected
}

// bboxArea returns the area of a [x1, y1, x2, y2] bounding box.
func bboxArea(bbox []float64) float64 {
	if len(bbox) != 4 {
		return 0
	}
	w := bbox[2] - bbox[0]
	h := bbox[3] - bbox[1]
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// SelectFace picks one face from a detection result according to the policy.
// Returns nil when no faces were detected.
func SelectFace(faces []Face, policy FacePolicy) *Face {
	if len(faces) == 0 {
		return nil
	}

	if policy == PolicyLargestArea {
		best := 0
		bestArea := bboxArea(faces[0].BBox)
		for i := 1; i < len(faces); i++ {
			if area := bboxArea(faces[i].BBox); area > bestArea {
				best = i
				bestArea = area
			}
		}
		return &faces[best]
	}

	return &faces[0]
}
