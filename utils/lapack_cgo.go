//go:build cgo && netlib

package utils

/*
#cgo LDFLAGS: -lopenblas -llapacke -lgfortran -lm -lpthread
#include <cblas.h>
#include <lapacke.h>
*/
import "C"

import (
	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

// Build with -tags netlib to route the rank and inverse computations through OpenBLAS.
func init() {
	blas64.Use(netblas.Implementation{})
}
