package main

import (
	"github.com/shopfront/orders/internal/app/notifier"
	"github.com/shopfront/orders/internal/config"
)

func main() {
	config.MustInit()
	notifier.MustNewApp().Run()
}
