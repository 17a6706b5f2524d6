package clustering

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestReseedEmptyClustersMovesFarthestCase(testInstance *testing.T) {
	// Cases 0 and 1 are mutually similar while case 2 sits apart, so case 2 is
	// the farthest member of the single occupied cluster.
	trainingKernel := mat.NewSymDense(3, nil)
	trainingKernel.SetSym(0, 0, 1.0)
	trainingKernel.SetSym(1, 1, 1.0)
	trainingKernel.SetSym(2, 2, 1.0)
	trainingKernel.SetSym(0, 1, 0.9)
	trainingKernel.SetSym(0, 2, 0.1)
	trainingKernel.SetSym(1, 2, 0.1)

	labels := []int{0, 0, 0}
	clusterMembers := membersByCluster(labels, 2)
	require.Empty(testInstance, clusterMembers[1])

	reseedEmptyClusters(trainingKernel, clusterMembers, labels)

	require.Equal(testInstance, []int{0, 0, 1}, labels)
}

func TestReseedEmptyClustersLeavesSingletonsIntact(testInstance *testing.T) {
	trainingKernel := mat.NewSymDense(2, nil)
	trainingKernel.SetSym(0, 0, 1.0)
	trainingKernel.SetSym(1, 1, 1.0)
	trainingKernel.SetSym(0, 1, 0.2)

	labels := []int{0, 1}
	clusterMembers := membersByCluster(labels, 3)
	require.Empty(testInstance, clusterMembers[2])

	reseedEmptyClusters(trainingKernel, clusterMembers, labels)

	require.Equal(testInstance, []int{0, 1}, labels)
}
