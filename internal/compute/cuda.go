//go:build cuda

package compute

/*
#cgo CFLAGS: -I/opt/cuda/include -I${SRCDIR}/kernels
#cgo LDFLAGS: -L/opt/cuda/lib64 -L${SRCDIR}/kernels -lcudart -lnbodykernels -lstdc++
#include <stdlib.h>
#include "nbody_prefs.h"

extern int cuda_device_count();
extern const char* cuda_device_name_get();
extern int cuda_warp_size();
extern int nbody_integrate(const NBody_Compute_Prefs* prefs,
                           float* pos_out, float* vel_out,
                           const float* pos_in, const float* vel_in);
extern void nbody_release();
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/san-kum/nbody/internal/prefs"
)

type CUDABackend struct {
	available  bool
	deviceName string
	warp       int
}

func NewCUDABackend() *CUDABackend {
	// The kernel-side declaration must match the host record byte for byte.
	if C.sizeof_NBody_Compute_Prefs != prefs.Size {
		panic(fmt.Sprintf("compute: kernel prefs are %d bytes, host prefs are %d", C.sizeof_NBody_Compute_Prefs, prefs.Size))
	}

	count := int(C.cuda_device_count())
	name := ""
	warp := cpuWorkgroupWidth
	if count > 0 {
		name = C.GoString(C.cuda_device_name_get())
		warp = int(C.cuda_warp_size())
	}
	return &CUDABackend{
		available:  count > 0,
		deviceName: name,
		warp:       warp,
	}
}

func (c *CUDABackend) Name() string {
	if c.available {
		return "cuda (" + c.deviceName + ")"
	}
	return "cuda (not available)"
}

func (c *CUDABackend) Available() bool     { return c.available }
func (c *CUDABackend) WorkgroupWidth() int { return c.warp }
func (c *CUDABackend) Cleanup()            { C.nbody_release() }

func (c *CUDABackend) Integrate(params []byte, dst, src Buffers) error {
	if !c.available {
		return NewCPUBackend().Integrate(params, dst, src)
	}

	var p prefs.Prefs
	if err := p.UnmarshalBinary(params); err != nil {
		return err
	}
	n := int(p.Particles)
	if n == 0 {
		return nil
	}
	if len(src.Position) < n || len(src.Velocity) < n || len(dst.Position) < n || len(dst.Velocity) < n {
		return fmt.Errorf("%w: %d particles", ErrBufferMismatch, n)
	}

	rc := C.nbody_integrate(
		(*C.NBody_Compute_Prefs)(unsafe.Pointer(&params[0])),
		(*C.float)(unsafe.Pointer(&dst.Position[0])),
		(*C.float)(unsafe.Pointer(&dst.Velocity[0])),
		(*C.float)(unsafe.Pointer(&src.Position[0])),
		(*C.float)(unsafe.Pointer(&src.Velocity[0])),
	)
	if rc != 0 {
		return fmt.Errorf("compute: cuda kernel failed with code %d", int(rc))
	}
	return nil
}
