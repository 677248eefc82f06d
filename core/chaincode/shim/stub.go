
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
	"github.com/golang/protobuf/ptypes/timestamp"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/ic-matcom/fabric-chaincode-go/protos/utils"
	"github.com/pkg/errors"
)

//ChaincodeStub是传给Init和Invoke的交易上下文，
//账本操作通过Handler发送给对等节点
type ChaincodeStub struct {
	TxID      string
	ChannelId string

	chaincodeEvent *pb.ChaincodeEvent
	args           [][]byte
	decorations    map[string][]byte
	handler        *Handler
	ctx            context.Context

	validationParameterMetakey string

//以下字段来自签名提案，内部调用时为空
	signedProposal *pb.SignedProposal
	proposal       *pb.Proposal
	creator        []byte
	transient      map[string][]byte
	binding        []byte
	txTimestamp    *timestamp.Timestamp
}

func newChaincodeStub(ctx context.Context, handler *Handler, channelID, txid string, input *pb.ChaincodeInput, decoded *utils.DecodedProposal) *ChaincodeStub {
	stub := &ChaincodeStub{
		TxID:                       txid,
		ChannelId:                  channelID,
		args:                       input.Args,
		decorations:                input.Decorations,
		handler:                    handler,
		ctx:                        ctx,
		validationParameterMetakey: pb.MetaDataKeys_VALIDATION_PARAMETER.String(),
	}
	if decoded != nil {
		stub.signedProposal = decoded.SignedProposal
		stub.proposal = decoded.Proposal
		stub.creator = decoded.Creator
		stub.transient = decoded.Transient
		stub.binding = decoded.Binding
		stub.txTimestamp = decoded.Timestamp
	}
	return stub
}

//gettxid返回建议的事务ID
func (stub *ChaincodeStub) GetTxID() string {
	return stub.TxID
}

//GetChannelID返回建议的通道
func (stub *ChaincodeStub) GetChannelID() string {
	return stub.ChannelId
}

func (stub *ChaincodeStub) GetDecorations() map[string][]byte {
	return stub.decorations
}

//------------调用链码函数-----------

func (stub *ChaincodeStub) InvokeChaincode(chaincodeName string, args [][]byte, channel string) pb.Response {
//在内部，我们将chaincode名称作为复合名称处理
	if channel != "" {
		chaincodeName = chaincodeName + "/" + channel
	}
	return stub.handler.handleInvokeChaincode(stub.ctx, chaincodeName, args, stub.ChannelId, stub.TxID)
}

//-------状态函数------

func (stub *ChaincodeStub) GetState(key string) ([]byte, error) {
//通过将集合设置为空字符串来访问公共数据
	collection := ""
	return stub.handler.handleGetState(stub.ctx, collection, key, stub.ChannelId, stub.TxID)
}

func (stub *ChaincodeStub) SetStateValidationParameter(key string, ep []byte) error {
	return stub.handler.handlePutStateMetadataEntry(stub.ctx, "", key, stub.validationParameterMetakey, ep, stub.ChannelId, stub.TxID)
}

func (stub *ChaincodeStub) GetStateValidationParameter(key string) ([]byte, error) {
	md, err := stub.handler.handleGetStateMetadata(stub.ctx, "", key, stub.ChannelId, stub.TxID)
	if err != nil {
		return nil, err
	}
	if ep, ok := md[stub.validationParameterMetakey]; ok {
		return ep, nil
	}
	return nil, nil
}

func (stub *ChaincodeStub) PutState(key string, value []byte) error {
	if key == "" {
		return errors.New("key must not be an empty string")
	}
	collection := ""
	return stub.handler.handlePutState(stub.ctx, collection, key, value, stub.ChannelId, stub.TxID)
}

func (stub *ChaincodeStub) DelState(key string) error {
	collection := ""
	return stub.handler.handleDelState(stub.ctx, collection, key, stub.ChannelId, stub.TxID)
}

//-------私有状态函数------

func (stub *ChaincodeStub) GetPrivateData(collection string, key string) ([]byte, error) {
	if collection == "" {
		return nil, errors.New("collection must not be an empty string")
	}
	return stub.handler.handleGetState(stub.ctx, collection, key, stub.ChannelId, stub.TxID)
}

func (stub *ChaincodeStub) PutPrivateData(collection string, key string, value []byte) error {
	if collection == "" {
		return errors.New("collection must not be an empty string")
	}
	if key == "" {
		return errors.New("key must not be an empty string")
	}
	return stub.handler.handlePutState(stub.ctx, collection, key, value, stub.ChannelId, stub.TxID)
}

func (stub *ChaincodeStub) DelPrivateData(collection string, key string) error {
	if collection == "" {
		return errors.New("collection must not be an empty string")
	}
	return stub.handler.handleDelState(stub.ctx, collection, key, stub.ChannelId, stub.TxID)
}

func (stub *ChaincodeStub) GetPrivateDataValidationParameter(collection, key string) ([]byte, error) {
	md, err := stub.handler.handleGetStateMetadata(stub.ctx, collection, key, stub.ChannelId, stub.TxID)
	if err != nil {
		return nil, err
	}
	if ep, ok := md[stub.validationParameterMetakey]; ok {
		return ep, nil
	}
	return nil, nil
}

func (stub *ChaincodeStub) SetPrivateDataValidationParameter(collection, key string, ep []byte) error {
	return stub.handler.handlePutStateMetadataEntry(stub.ctx, collection, key, stub.validationParameterMetakey, ep, stub.ChannelId, stub.TxID)
}

//-------查询函数------

func (stub *ChaincodeStub) GetStateByRange(startKey, endKey string) (StateQueryIteratorInterface, error) {
	if startKey == "" {
		startKey = emptyKeySubstitute
	}
	if err := validateSimpleKeys(startKey, endKey); err != nil {
		return nil, err
	}
//忽略queryresponseMetadata，因为它不适用于没有分页的范围查询
	iterator, _, err := stub.handleGetStateByRange("", startKey, endKey, nil)
	return iterator, err
}

func (stub *ChaincodeStub) GetStateByRangeWithPagination(startKey, endKey string, pageSize int32,
	bookmark string) (StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {

	if startKey == "" {
		startKey = emptyKeySubstitute
	}
	if err := validateSimpleKeys(startKey, endKey); err != nil {
		return nil, nil, err
	}

	metadata, err := createQueryMetadata(pageSize, bookmark)
	if err != nil {
		return nil, nil, err
	}
	return stub.handleGetStateByRange("", startKey, endKey, metadata)
}

func (stub *ChaincodeStub) GetStateByPartialCompositeKey(objectType string, attributes []string) (StateQueryIteratorInterface, error) {
	startKey, endKey, err := createRangeKeysForPartialCompositeKey(objectType, attributes)
	if err != nil {
		return nil, err
	}
	iterator, _, err := stub.handleGetStateByRange("", startKey, endKey, nil)
	return iterator, err
}

func (stub *ChaincodeStub) GetStateByPartialCompositeKeyWithPagination(objectType string, keys []string,
	pageSize int32, bookmark string) (StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {

	metadata, err := createQueryMetadata(pageSize, bookmark)
	if err != nil {
		return nil, nil, err
	}

	startKey, endKey, err := createRangeKeysForPartialCompositeKey(objectType, keys)
	if err != nil {
		return nil, nil, err
	}
	return stub.handleGetStateByRange("", startKey, endKey, metadata)
}

func (stub *ChaincodeStub) GetQueryResult(query string) (StateQueryIteratorInterface, error) {
//忽略queryresponseMetadata，因为它不适用于没有分页的富查询
	iterator, _, err := stub.handleGetQueryResult("", query, nil)
	return iterator, err
}

func (stub *ChaincodeStub) GetQueryResultWithPagination(query string, pageSize int32,
	bookmark string) (StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {

	metadata, err := createQueryMetadata(pageSize, bookmark)
	if err != nil {
		return nil, nil, err
	}
	return stub.handleGetQueryResult("", query, metadata)
}

func (stub *ChaincodeStub) GetPrivateDataByRange(collection, startKey, endKey string) (StateQueryIteratorInterface, error) {
	if collection == "" {
		return nil, errors.New("collection must not be an empty string")
	}
	if startKey == "" {
		startKey = emptyKeySubstitute
	}
	if err := validateSimpleKeys(startKey, endKey); err != nil {
		return nil, err
	}
	iterator, _, err := stub.handleGetStateByRange(collection, startKey, endKey, nil)
	return iterator, err
}

func (stub *ChaincodeStub) GetPrivateDataByPartialCompositeKey(collection, objectType string, attributes []string) (StateQueryIteratorInterface, error) {
	if collection == "" {
		return nil, errors.New("collection must not be an empty string")
	}

	startKey, endKey, err := createRangeKeysForPartialCompositeKey(objectType, attributes)
	if err != nil {
		return nil, err
	}
	iterator, _, err := stub.handleGetStateByRange(collection, startKey, endKey, nil)
	return iterator, err
}

func (stub *ChaincodeStub) GetPrivateDataQueryResult(collection, query string) (StateQueryIteratorInterface, error) {
	if collection == "" {
		return nil, errors.New("collection must not be an empty string")
	}
	iterator, _, err := stub.handleGetQueryResult(collection, query, nil)
	return iterator, err
}

func (stub *ChaincodeStub) GetHistoryForKey(key string) (HistoryQueryIteratorInterface, error) {
	response, err := stub.handler.handleGetHistoryForKey(stub.ctx, key, stub.ChannelId, stub.TxID)
	if err != nil {
		return nil, err
	}
	return &HistoryQueryIterator{CommonIterator: stub.newCommonIterator(response)}, nil
}

func (stub *ChaincodeStub) handleGetStateByRange(collection, startKey, endKey string,
	metadata []byte) (StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {

	response, err := stub.handler.handleGetStateByRange(stub.ctx, collection, startKey, endKey, metadata, stub.ChannelId, stub.TxID)
	if err != nil {
		return nil, nil, err
	}
	return stub.stateQueryResult(response)
}

func (stub *ChaincodeStub) handleGetQueryResult(collection, query string,
	metadata []byte) (StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {

	response, err := stub.handler.handleGetQueryResult(stub.ctx, collection, query, metadata, stub.ChannelId, stub.TxID)
	if err != nil {
		return nil, nil, err
	}
	return stub.stateQueryResult(response)
}

func (stub *ChaincodeStub) stateQueryResult(response *pb.QueryResponse) (StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {
	responseMetadata, err := createQueryResponseMetadata(response.Metadata)
	if err != nil {
		return nil, nil, err
	}
	return &StateQueryIterator{CommonIterator: stub.newCommonIterator(response)}, responseMetadata, nil
}

func createQueryMetadata(pageSize int32, bookmark string) ([]byte, error) {
//使用分页所需的页面大小和书签构造querymetadata
	metadata := &pb.QueryMetadata{PageSize: pageSize, Bookmark: bookmark}
	metadataBytes, err := proto.Marshal(metadata)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal query metadata")
	}
	return metadataBytes, nil
}

func createQueryResponseMetadata(metadataBytes []byte) (*pb.QueryResponseMetadata, error) {
	metadata := &pb.QueryResponseMetadata{}
	if err := proto.Unmarshal(metadataBytes, metadata); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal query response metadata")
	}
	return metadata, nil
}

//-------复合键------

func (stub *ChaincodeStub) CreateCompositeKey(objectType string, attributes []string) (string, error) {
	return CreateCompositeKey(objectType, attributes)
}

func (stub *ChaincodeStub) SplitCompositeKey(compositeKey string) (string, []string, error) {
	return SplitCompositeKey(compositeKey)
}

//-------参数与提案------

func (stub *ChaincodeStub) GetArgs() [][]byte {
	return stub.args
}

func (stub *ChaincodeStub) GetStringArgs() []string {
	args := stub.GetArgs()
	strargs := make([]string, 0, len(args))
	for _, barg := range args {
		strargs = append(strargs, string(barg))
	}
	return strargs
}

func (stub *ChaincodeStub) GetFunctionAndParameters() (function string, params []string) {
	allargs := stub.GetStringArgs()
	function = ""
	params = []string{}
	if len(allargs) >= 1 {
		function = allargs[0]
		params = allargs[1:]
	}
	return
}

func (stub *ChaincodeStub) GetArgsSlice() ([]byte, error) {
	args := stub.GetArgs()
	res := []byte{}
	for _, barg := range args {
		res = append(res, barg...)
	}
	return res, nil
}

func (stub *ChaincodeStub) GetCreator() ([]byte, error) {
	return stub.creator, nil
}

func (stub *ChaincodeStub) GetTransient() (map[string][]byte, error) {
	return stub.transient, nil
}

func (stub *ChaincodeStub) GetBinding() ([]byte, error) {
	return stub.binding, nil
}

func (stub *ChaincodeStub) GetSignedProposal() (*pb.SignedProposal, error) {
	return stub.signedProposal, nil
}

//GetTxTimestamp返回通道头中客户端设置的时间戳，
//没有签名提案时返回错误
func (stub *ChaincodeStub) GetTxTimestamp() (*timestamp.Timestamp, error) {
	if stub.proposal == nil {
		return nil, errors.Errorf("[%s] no signed proposal, transaction timestamp is not available", shorttxid(stub.TxID))
	}
	return stub.txTimestamp, nil
}

//SetEvent设置交易完成时随COMPLETED消息发出的事件，
//多次调用只保留最后一个
func (stub *ChaincodeStub) SetEvent(name string, payload []byte) error {
	if name == "" {
		return errors.New("event name can not be nil string")
	}
	stub.chaincodeEvent = &pb.ChaincodeEvent{EventName: name, Payload: payload}
	return nil
}
