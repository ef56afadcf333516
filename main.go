package main

import "github.com/KoroshM/Multithreading-Barbershop-Exercise/cmd"

func main() {
	cmd.EntryPoint()
}
