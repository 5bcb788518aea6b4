//go:build !cuda

package compute

type CUDABackend struct{}

func NewCUDABackend() *CUDABackend {
	return &CUDABackend{}
}

func (c *CUDABackend) Name() string        { return "cuda (not available)" }
func (c *CUDABackend) Available() bool     { return false }
func (c *CUDABackend) WorkgroupWidth() int { return cpuWorkgroupWidth }
func (c *CUDABackend) Cleanup()            {}

func (c *CUDABackend) Integrate(params []byte, dst, src Buffers) error {
	return NewCPUBackend().Integrate(params, dst, src)
}
