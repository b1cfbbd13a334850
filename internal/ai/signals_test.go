package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSignalsPerson(t *testing.T) {
	s := ExtractSignals("A person appears near the door in the second picture.")
	assert.True(t, s.PersonDetected)
	assert.Contains(t, s.Objects, "person")
	assert.GreaterOrEqual(t, s.Confidence, 0.7)
}

func TestExtractSignalsMultipleObjects(t *testing.T) {
	s := ExtractSignals("A man walks a dog past a parked car.")
	assert.True(t, s.PersonDetected)
	assert.ElementsMatch(t, []string{"dog", "car"}, s.Objects)
	assert.Equal(t, 0.75, s.Confidence)
}

func TestExtractSignalsNothingRecognized(t *testing.T) {
	s := ExtractSignals("The two pictures look identical, only shadows moved.")
	assert.False(t, s.PersonDetected)
	assert.Empty(t, s.Objects)
	assert.Equal(t, 0.3, s.Confidence)
}

func TestExtractSignalsWordBoundaries(t *testing.T) {
	// "carpet" must not match "car", "catalog" must not match "cat".
	s := ExtractSignals("the carpet by the catalog shelf is unchanged")
	assert.Empty(t, s.Objects)
}

func TestObjectsJSON(t *testing.T) {
	assert.Equal(t, "[]", Signals{}.ObjectsJSON())
	assert.Equal(t, `["person","dog"]`, Signals{Objects: []string{"person", "dog"}}.ObjectsJSON())
}
