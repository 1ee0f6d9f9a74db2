// Package process provides the block render context and the lock-free
// hand-off between the control and audio threads.
package process

// Context carries one mono block from the renderer to an output. It
// allocates only in NewContext.
type Context struct {
	Output     []float64
	SampleRate float64
}

// NewContext creates a context whose blocks hold up to maxBlockSize samples.
func NewContext(maxBlockSize int, sampleRate float64) *Context {
	return &Context{
		Output:     make([]float64, 0, maxBlockSize),
		SampleRate: sampleRate,
	}
}

// Resize sets the block length, up to the allocated maximum.
func (c *Context) Resize(frames int) {
	if frames > cap(c.Output) {
		frames = cap(c.Output)
	}
	if frames < 0 {
		frames = 0
	}
	c.Output = c.Output[:frames]
}

// MaxBlockSize returns the allocated block capacity.
func (c *Context) MaxBlockSize() int {
	return cap(c.Output)
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	return len(c.Output)
}

// Float32 writes the block into dst as float32 and returns the count.
func (c *Context) Float32(dst []float32) int {
	n := copy32(dst, c.Output)
	return n
}

func copy32(dst []float32, src []float64) int {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = float32(src[i])
	}
	return n
}
