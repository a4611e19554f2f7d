package common

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestIdentityMatrix(t *testing.T) {
	m := IdentityMatrix()
	for i, v := range m {
		if i%5 == 0 {
			assert.Equal(t, float32(1), v, "diagonal %d", i)
		} else {
			assert.Equal(t, float32(0), v, "off-diagonal %d", i)
		}
	}

	dirty := []float32{9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9}
	Identity(dirty)
	assert.Equal(t, m[:], dirty)
}

func TestDefaultSamplerStagingData(t *testing.T) {
	s := DefaultSamplerStagingData()
	assert.Equal(t, wgpu.AddressModeRepeat, s.AddressModeU)
	assert.Equal(t, wgpu.AddressModeRepeat, s.AddressModeV)
	assert.Equal(t, wgpu.FilterModeLinear, s.MagFilter)
	assert.Equal(t, wgpu.FilterModeLinear, s.MinFilter)
	assert.Equal(t, wgpu.MipmapFilterModeLinear, s.MipmapFilter)
	assert.Equal(t, uint16(1), s.MaxAnisotropy)
}
