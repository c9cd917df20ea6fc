// Package main provides the mantle CLI entry point.
package main

func main() {
	Execute()
}
