
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


package comm_test

import (
	"context"
	"testing"

	"github.com/ic-matcom/fabric-chaincode-go/common/metrics"
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics/metricsfakes"
	"github.com/ic-matcom/fabric-chaincode-go/core/comm"
	. "github.com/onsi/gomega"
	"google.golang.org/grpc/stats"
)

func TestConnectionCounters(t *testing.T) {
	gt := NewGomegaWithT(t)

	openCounter := &metricsfakes.Counter{}
	closedCounter := &metricsfakes.Counter{}
	fakeProvider := &metricsfakes.Provider{}
	fakeProvider.NewCounterStub = func(o metrics.CounterOpts) metrics.Counter {
		switch o.Name {
		case "conn_opened":
			return openCounter
		case "conn_closed":
			return closedCounter
		default:
			panic("unknown counter")
		}
	}

	sh := comm.NewServerStatsHandler(fakeProvider)
	gt.Expect(fakeProvider.NewCounterCallCount()).To(Equal(2))

	ctx := sh.TagConn(context.Background(), &stats.ConnTagInfo{})
	sh.HandleConn(ctx, &stats.ConnBegin{})
	sh.HandleConn(ctx, &stats.ConnBegin{})
	sh.HandleConn(ctx, &stats.ConnEnd{})

	gt.Expect(openCounter.AddCallCount()).To(Equal(2))
	gt.Expect(openCounter.AddArgsForCall(0)).To(Equal(1.0))
	gt.Expect(closedCounter.AddCallCount()).To(Equal(1))
	gt.Expect(closedCounter.AddArgsForCall(0)).To(Equal(1.0))
}

func TestConnectionCountersWithServer(t *testing.T) {
	gt := NewGomegaWithT(t)

	openCounter := &metricsfakes.Counter{}
	closedCounter := &metricsfakes.Counter{}
	fakeProvider := &metricsfakes.Provider{}
	fakeProvider.NewCounterStub = func(o metrics.CounterOpts) metrics.Counter {
		if o.Name == "conn_opened" {
			return openCounter
		}
		return closedCounter
	}

	srv := startHealthServer(t, comm.ServerConfig{MetricsProvider: fakeProvider})
	defer srv.Stop()

	client, err := comm.NewGRPCClient(comm.ClientConfig{Timeout: timeout})
	gt.Expect(err).NotTo(HaveOccurred())
	conn, err := client.NewConnection(srv.Address(), "")
	gt.Expect(err).NotTo(HaveOccurred())

	gt.Expect(checkHealth(conn, timeout)).To(Succeed())
	gt.Eventually(openCounter.AddCallCount, timeout).Should(Equal(1))

	conn.Close()
	gt.Eventually(closedCounter.AddCallCount, timeout).Should(Equal(1))
}
