//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/twilight-hud/internal/bootstrap"
	"github.com/yanqian/twilight-hud/internal/domain/auth"
	"github.com/yanqian/twilight-hud/internal/domain/media"
	"github.com/yanqian/twilight-hud/internal/domain/messaging"
	"github.com/yanqian/twilight-hud/internal/domain/story"
	"github.com/yanqian/twilight-hud/internal/domain/twilight"
	"github.com/yanqian/twilight-hud/internal/infra/config"
	httpiface "github.com/yanqian/twilight-hud/internal/interface/http"
	"github.com/yanqian/twilight-hud/internal/scheduler"
	"github.com/yanqian/twilight-hud/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideLocation,
		provideTwilightConfig,
		provideTwilightSource,
		provideTwilightStore,
		provideAlertSinks,
		provideMediaConfig,
		provideSearcher,
		provideResolver,
		providePlayer,
		provideSMSCredentials,
		provideSMSSender,
		provideMessageRepository,
		provideStoryConfig,
		provideChatClient,
		provideTokenCounter,
		provideSpeakers,
		provideAudioStore,
		provideNarrator,
		provideAuthConfig,
		scheduler.New,
		twilight.NewService,
		media.NewService,
		messaging.NewService,
		story.NewService,
		auth.NewService,
		wire.Bind(new(messaging.Deferrer), new(*scheduler.Scheduler)),
		wire.Bind(new(httpiface.TwilightService), new(*twilight.Service)),
		wire.Bind(new(httpiface.MediaService), new(*media.Service)),
		wire.Bind(new(httpiface.MessagingService), new(*messaging.Service)),
		wire.Bind(new(httpiface.StoryService), new(*story.Service)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}

func initializeAuth() (auth.Service, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		auth.NewService,
	)
	return nil, nil
}
