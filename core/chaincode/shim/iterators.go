
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
package shim

import (
	"context"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

//CommonIterator缓存对等节点返回的一批查询结果，
//用完后通过QUERY_STATE_NEXT取下一批
type CommonIterator struct {
	handler    *Handler
	ctx        context.Context
	channelId  string
	txid       string
	response   *pb.QueryResponse
	currentLoc int
}

type StateQueryIterator struct {
	*CommonIterator
}

type HistoryQueryIterator struct {
	*CommonIterator
}

func (stub *ChaincodeStub) newCommonIterator(response *pb.QueryResponse) *CommonIterator {
	return &CommonIterator{
		handler:   stub.handler,
		ctx:       stub.ctx,
		channelId: stub.ChannelId,
		txid:      stub.TxID,
		response:  response,
	}
}

func (iter *StateQueryIterator) Next() (*queryresult.KV, error) {
	kv := &queryresult.KV{}
	if err := iter.nextResult(kv); err != nil {
		return nil, err
	}
	return kv, nil
}

func (iter *HistoryQueryIterator) Next() (*queryresult.KeyModification, error) {
	km := &queryresult.KeyModification{}
	if err := iter.nextResult(km); err != nil {
		return nil, err
	}
	return km, nil
}

func (iter *CommonIterator) HasNext() bool {
	return iter.currentLoc < len(iter.response.Results) || iter.response.HasMore
}

func (iter *CommonIterator) fetchNextQueryResult() error {
	response, err := iter.handler.handleQueryStateNext(iter.ctx, iter.response.Id, iter.channelId, iter.txid)
	if err != nil {
		return err
	}
	iter.currentLoc = 0
	iter.response = response
	return nil
}

//nextResult把下一条结果解到result中，取完缓存的最后一条时
//预取下一批以更新HasMore
func (iter *CommonIterator) nextResult(result proto.Message) error {
	if iter.currentLoc >= len(iter.response.Results) {
		if !iter.response.HasMore {
			return errors.New("no such key")
		}
//没有缓存结果但HasMore为真
		return errors.New("invalid iterator state")
	}

	queryResultBytes := iter.response.Results[iter.currentLoc]
	if err := proto.Unmarshal(queryResultBytes.ResultBytes, result); err != nil {
		iter.handler.logger.Errorf("Failed to decode query results: %+v", err)
		return errors.Wrap(err, "error unmarshaling result from bytes")
	}
	iter.currentLoc++

	if iter.currentLoc == len(iter.response.Results) && iter.response.HasMore {
		if err := iter.fetchNextQueryResult(); err != nil {
			iter.handler.logger.Errorf("Failed to fetch next results: %+v", err)
			return err
		}
	}
	return nil
}

func (iter *CommonIterator) Close() error {
	_, err := iter.handler.handleQueryStateClose(iter.ctx, iter.response.Id, iter.channelId, iter.txid)
	return err
}
