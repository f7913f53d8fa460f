package main

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// redisPingCmd verifies the configured redis connection.
var redisPingCmd = &cobra.Command{
	Use:   "redis-ping",
	Short: "Check connectivity to the configured redis instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.Redis.Addr,
			Username: appCfg.Redis.Username,
			Password: appCfg.Redis.Password,
			DB:       appCfg.Redis.DB,
		})
		defer rdb.Close()

		pong, err := rdb.Ping(cmd.Context()).Result()
		if err != nil {
			return fmt.Errorf("ping %s: %w", appCfg.Redis.Addr, err)
		}

		fmt.Printf("%s %s\n", appCfg.Redis.Addr, pong)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisPingCmd)
}
