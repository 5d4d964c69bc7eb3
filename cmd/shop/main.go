package main

import (
	"github.com/shopfront/orders/internal/app"
	"github.com/shopfront/orders/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
