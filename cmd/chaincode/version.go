
//此源码被清华学神尹成大魔王专业翻译分析并修改
//尹成QQ77025077
//尹成微信18510341407
//尹成所在QQ群721929980
//尹成邮箱 yinc13@mails.tsinghua.edu.cn
//尹成毕业于清华大学,微软区块链领域全球最有价值专家
//https://mvp.microsoft.com/zh-cn/PublicProfile/4033620
/*
版权所有IBM公司。保留所有权利。

SPDX许可证标识符：Apache-2.0
**/

package main

import (
	"fmt"
	"runtime"

	"github.com/ic-matcom/fabric-chaincode-go/common/metadata"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print chaincode version.",
		Long:  `Print the version and build information of the chaincode binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return errors.New("trailing args detected")
			}
//命令行解析已完成，不再打印用法
			cmd.SilenceUsage = true
			fmt.Fprint(cmd.OutOrStdout(), GetInfo())
			return nil
		},
	}
}

//GetInfo返回版本信息
func GetInfo() string {
	version := metadata.Version
	if version == "" {
		version = "development build"
	}
	return fmt.Sprintf("%s:\n Version: %s\n Commit SHA: %s\n Go version: %s\n OS/Arch: %s/%s\n",
		metadata.ProgramName, version, metadata.CommitSHA, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
