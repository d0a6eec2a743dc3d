package control

import "github.com/san-kum/mpmsim/internal/mpm"

type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Sample(tick int) mpm.Pointer {
	return mpm.Pointer{}
}
